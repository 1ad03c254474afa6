// file: internal/database/store.go
// version: 3.0.0
// guid: 04e37b17-3f93-4aea-83d1-c9d6702c115c

package database

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable wraps every write that could not be persisted
// (disk full, closed database, permission problems). The write had no effect.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the durable string key/value surface the cache, downloads and
// preferences layers are built on. Implementations must make each call
// atomic: a completed SetString is visible to every later GetString.
type Store interface {
	// GetString returns the value stored under key. ok is false when the
	// key does not exist; err is only set for read failures.
	GetString(key string) (value string, ok bool, err error)

	// SetString writes value under key, replacing any previous value.
	SetString(key, value string) error

	// RemoveKey deletes key. Removing a missing key is not an error.
	RemoveKey(key string) error

	// ListKeys returns every key starting with prefix in ascending order.
	// An empty prefix lists all keys.
	ListKeys(prefix string) ([]string, error)

	// Close releases the underlying database.
	Close() error
}

// Supported store types.
const (
	TypePebble = "pebble"
	TypeSQLite = "sqlite"
	TypeMemory = "memory"
)

// OpenStore opens the durable store selected by configuration.
// PebbleDB is the default; SQLite must be explicitly enabled.
func OpenStore(dbType, path string, enableSQLite bool) (Store, error) {
	switch dbType {
	case TypeSQLite, "sqlite3":
		if !enableSQLite {
			return nil, fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended database")
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return store, nil
	case TypePebble, "":
		store, err := NewPebbleStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
		return store, nil
	case TypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite, memory)", dbType)
	}
}

func writeError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrStorageUnavailable, op, key, err)
}
