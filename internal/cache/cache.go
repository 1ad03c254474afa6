// file: internal/cache/cache.go
// version: 2.1.0
// guid: 6d6634ca-b826-40a6-80b9-cfd1a35ec76c

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/metrics"
)

// KeyPrefix namespaces every cache entry in the durable store. No other
// component writes keys starting with it.
const KeyPrefix = "cache_"

// entry is the persisted form of a cached value. Timestamp and TTL are
// epoch milliseconds and milliseconds respectively.
type entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
}

func (e entry) live(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp <= e.TTL
}

// Cache is a persistent TTL cache on top of a database.Store. It holds no
// eviction policy of its own: callers pick the TTL per Put, and expired
// entries are removed lazily by the Get that finds them.
type Cache struct {
	mu    sync.Mutex
	store database.Store
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache backed by store.
func New(store database.Store, opts ...Option) *Cache {
	c := &Cache{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func storageKey(key string) string {
	return KeyPrefix + key
}

// Put stores value under key for ttl, replacing any previous entry.
// A returned error wrapping database.ErrStorageUnavailable means the write
// had no effect.
func (c *Cache) Put(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive, got %s", ttl)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to encode %q: %w", key, err)
	}
	data, err := json.Marshal(entry{
		Value:     raw,
		Timestamp: c.now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("cache: failed to encode %q: %w", key, err)
	}

	c.mu.Lock()
	err = c.store.SetString(storageKey(key), string(data))
	c.mu.Unlock()
	if err != nil {
		metrics.IncCacheWrite(false)
		log.Printf("[WARN] cache: write of %q had no effect: %v", key, err)
		return err
	}
	metrics.IncCacheWrite(true)
	return nil
}

// Get decodes the live entry for key into out. It reports false when the
// entry is missing, expired or cannot be decoded; expired entries are
// deleted before returning.
func (c *Cache) Get(key string, out any) bool {
	raw, outcome := c.lookup(key)
	if outcome == metrics.OutcomeHit {
		if err := json.Unmarshal(raw, out); err != nil {
			log.Printf("[WARN] cache: entry %q does not decode into %T: %v", key, out, err)
			outcome = metrics.OutcomeCorrupt
		}
	}
	metrics.IncCacheLookup(outcome)
	return outcome == metrics.OutcomeHit
}

// Load is the typed form of Get.
func Load[T any](c *Cache, key string) (T, bool) {
	var v T
	if !c.Get(key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

func (c *Cache) lookup(key string) (json.RawMessage, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	skey := storageKey(key)
	data, ok, err := c.store.GetString(skey)
	if err != nil {
		log.Printf("[WARN] cache: failed to read %q: %v", key, err)
		return nil, metrics.OutcomeMiss
	}
	if !ok {
		return nil, metrics.OutcomeMiss
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		log.Printf("[WARN] cache: corrupt entry %q: %v", key, err)
		return nil, metrics.OutcomeCorrupt
	}

	if !e.live(c.now()) {
		log.Printf("[DEBUG] cache: entry %q expired", key)
		c.removeIfUnchanged(skey, data)
		return nil, metrics.OutcomeExpired
	}
	return e.Value, metrics.OutcomeHit
}

// removeIfUnchanged deletes skey only while it still holds data, so an
// entry written by another Cache on the same store survives.
func (c *Cache) removeIfUnchanged(skey, data string) {
	current, ok, err := c.store.GetString(skey)
	if err != nil || !ok || current != data {
		return
	}
	if err := c.store.RemoveKey(skey); err != nil {
		log.Printf("[WARN] cache: failed to delete expired %q: %v", strings.TrimPrefix(skey, KeyPrefix), err)
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) error {
	return c.store.RemoveKey(storageKey(key))
}

// Keys returns the logical keys of every stored entry, live or not.
func (c *Cache) Keys() ([]string, error) {
	skeys, err := c.store.ListKeys(KeyPrefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(skeys))
	for _, k := range skeys {
		keys = append(keys, strings.TrimPrefix(k, KeyPrefix))
	}
	return keys, nil
}

// ClearAll removes every cache entry and returns how many were removed.
// Keys outside the cache namespace are never touched.
func (c *Cache) ClearAll() (int, error) {
	skeys, err := c.store.ListKeys(KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("cache: failed to list entries: %w", err)
	}

	removed := 0
	var errs []error
	for _, k := range skeys {
		if err := c.store.RemoveKey(k); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if len(errs) > 0 {
		return removed, errors.Join(errs...)
	}
	log.Printf("[INFO] cache: cleared %d entries", removed)
	return removed, nil
}
