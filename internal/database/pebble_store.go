// file: internal/database/pebble_store.go
// version: 3.0.0
// guid: 9a95ce39-8578-416f-9148-2483d3171b1c

package database

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore implements Store on top of PebbleDB.
//
// Key Schema:
// - cache_<key>   -> cache entry JSON ({value, timestamp, ttl})
// - downloads     -> JSON array of download records
// - theme         -> "light" | "dark"
// - fontSize      -> "small" | "medium" | "large"
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens or creates a PebbleDB at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func (p *PebbleStore) GetString(key string) (string, bool, error) {
	value, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	// value is only valid until closer.Close.
	s := string(value)
	closer.Close()
	return s, true, nil
}

func (p *PebbleStore) SetString(key, value string) error {
	if err := p.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return writeError("set", key, err)
	}
	return nil
}

func (p *PebbleStore) RemoveKey(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return writeError("delete", key, err)
	}
	return nil
}

func (p *PebbleStore) ListKeys(prefix string) ([]string, error) {
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		opts.UpperBound = prefixUpperBound([]byte(prefix))
	}

	iter, err := p.db.NewIter(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists (prefix is all 0xff).
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
