// file: internal/downloads/downloads.go
// version: 1.1.0
// guid: ab6b2729-d52f-4d22-b832-f3636c34c4d4

package downloads

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/metrics"
	"github.com/jdfalk/readora/internal/models"
)

// StorageKey is the fixed key holding the whole downloads collection.
const StorageKey = "downloads"

// Store is the user's list of saved books, at most one record per book ID.
// Every call reads, mutates and rewrites the whole collection.
type Store struct {
	mu    sync.Mutex
	store database.Store
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for SavedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a downloads store backed by store.
func New(store database.Store, opts ...Option) *Store {
	s := &Store{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add saves book unless a record with the same ID exists. The first save
// wins: an existing record keeps its SavedAt and fields. added reports
// whether a new record was written.
func (s *Store) Add(book models.Book) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.ID == book.ID {
			return false, nil
		}
	}

	records = append(records, models.DownloadRecord{Book: book, SavedAt: s.now().UTC()})
	if err := s.save(records); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the record for id. A missing id is not an error.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	kept := make([]models.DownloadRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.save(kept)
}

// List returns every record in insertion order. A corrupt or unreadable
// collection is logged and reported as empty.
func (s *Store) List() []models.DownloadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return []models.DownloadRecord{}
	}
	return records
}

// Get returns the record for id.
func (s *Store) Get(id string) (models.DownloadRecord, bool) {
	for _, r := range s.List() {
		if r.ID == id {
			return r, true
		}
	}
	return models.DownloadRecord{}, false
}

// Has reports whether id has been saved.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// ClearAll deletes every record.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RemoveKey(StorageKey); err != nil {
		return err
	}
	metrics.SetDownloads(0)
	log.Printf("[INFO] downloads: cleared")
	return nil
}

// load reads the collection. Only a read failure is an error; a corrupt
// collection decodes as empty so the next write replaces it.
func (s *Store) load() ([]models.DownloadRecord, error) {
	data, ok, err := s.store.GetString(StorageKey)
	if err != nil {
		log.Printf("[WARN] downloads: failed to read collection: %v", err)
		if !errors.Is(err, database.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: read %q: %w", database.ErrStorageUnavailable, StorageKey, err)
		}
		return nil, err
	}
	if !ok {
		return []models.DownloadRecord{}, nil
	}

	var records []models.DownloadRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		log.Printf("[WARN] downloads: corrupt collection, treating as empty: %v", err)
		return []models.DownloadRecord{}, nil
	}
	if records == nil {
		records = []models.DownloadRecord{}
	}
	return records, nil
}

func (s *Store) save(records []models.DownloadRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("downloads: failed to encode collection: %w", err)
	}
	if err := s.store.SetString(StorageKey, string(data)); err != nil {
		log.Printf("[WARN] downloads: write had no effect: %v", err)
		return err
	}
	metrics.SetDownloads(len(records))
	return nil
}
