// file: internal/database/store_test.go
// version: 1.0.0
// guid: e58e7a86-0542-40ec-8457-c057510f0613

package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories lists every Store implementation; each contract test runs
// against all of them.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"pebble": func() Store {
			s, err := NewPebbleStore(filepath.Join(t.TempDir(), "test.pebble"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return s
		},
		"memory": func() Store {
			return NewMemoryStore()
		},
	}
}

func TestStoreSetGetRemove(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := open()
			defer store.Close()

			_, ok, err := store.GetString("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.SetString("theme", "dark"))
			v, ok, err := store.GetString("theme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", v)

			require.NoError(t, store.SetString("theme", "light"))
			v, _, _ = store.GetString("theme")
			assert.Equal(t, "light", v)

			require.NoError(t, store.RemoveKey("theme"))
			_, ok, err = store.GetString("theme")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, store.RemoveKey("never-existed"))
		})
	}
}

func TestStoreListKeysByPrefix(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := open()
			defer store.Close()

			for _, k := range []string{"cache_b", "cache_a", "cache", "cachf", "downloads", "theme", "fontSize"} {
				require.NoError(t, store.SetString(k, "x"))
			}

			keys, err := store.ListKeys("cache_")
			require.NoError(t, err)
			assert.Equal(t, []string{"cache_a", "cache_b"}, keys)

			all, err := store.ListKeys("")
			require.NoError(t, err)
			assert.Len(t, all, 7)
			assert.IsIncreasing(t, all)

			none, err := store.ListKeys("zzz")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestPebbleStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.pebble")

	store, err := NewPebbleStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetString("downloads", `[]`))
	require.NoError(t, store.Close())

	store, err = NewPebbleStore(path)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.GetString("downloads")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestMemoryStoreWriteErr(t *testing.T) {
	store := NewMemoryStore()
	store.WriteErr = errors.New("quota exceeded")

	err := store.SetString("k", "v")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, ok, _ := store.GetString("k")
	assert.False(t, ok, "failed write must have no effect")

	assert.ErrorIs(t, store.RemoveKey("k"), ErrStorageUnavailable)
}

func TestClosedStoreWritesAreUnavailable(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.SetString("k", "v"), ErrStorageUnavailable)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore(TypePebble, filepath.Join(dir, "a.pebble"), false)
	require.NoError(t, err)
	assert.IsType(t, &PebbleStore{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore(TypeSQLite, filepath.Join(dir, "b.db"), false)
	assert.ErrorContains(t, err, "not enabled")

	s, err = OpenStore("sqlite3", filepath.Join(dir, "b.db"), true)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = OpenStore(TypeMemory, "", false)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = OpenStore("redis", "", false)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("cache`"), prefixUpperBound([]byte("cache_")))
	assert.Equal(t, []byte{'b'}, prefixUpperBound([]byte{'a', 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
	assert.Nil(t, prefixUpperBound(nil))
}
