// file: internal/database/memory_store.go
// version: 2.0.0
// guid: 19e3cad6-9b44-4f76-b9a0-8347a84c2a8d

package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var errStoreClosed = errors.New("store is closed")

// MemoryStore is a map-backed Store used by tests and the "memory" db type.
// WriteErr, when set, makes every SetString/RemoveKey fail with it wrapped
// in ErrStorageUnavailable. ReadErr does the same for GetString.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]string
	closed   bool
	WriteErr error
	ReadErr  error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) GetString(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, errStoreClosed
	}
	if m.ReadErr != nil {
		return "", false, fmt.Errorf("%w: get %q: %w", ErrStorageUnavailable, key, m.ReadErr)
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return writeError("set", key, err)
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) RemoveKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return writeError("delete", key, err)
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) ListKeys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errStoreClosed
	}
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) writable() error {
	if m.closed {
		return errStoreClosed
	}
	return m.WriteErr
}
