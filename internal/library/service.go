// file: internal/library/service.go
// version: 1.0.0
// guid: 55e71dc7-c677-4ced-9823-86843e6e2622

package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jdfalk/readora/internal/cache"
	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/downloads"
	"github.com/jdfalk/readora/internal/models"
	"github.com/jdfalk/readora/internal/preferences"
	"golang.org/x/text/cases"
)

// ErrDownloadUnavailable is returned by Save for books without a download link.
var ErrDownloadUnavailable = errors.New("book has no download link")

// Cache keys.
const (
	RecentKey     = "recent_books"
	searchPrefix  = "search_"
	detailsPrefix = "book_"
)

// Catalog is the remote lookup surface the service depends on.
// *catalog.Client satisfies it.
type Catalog interface {
	FetchRecent(ctx context.Context) ([]models.Book, error)
	Search(ctx context.Context, query string) ([]models.Book, error)
	FetchDetails(ctx context.Context, id string) (models.Book, error)
}

// Policy holds the cache TTL for each kind of lookup. The recent list
// changes often; a book's details effectively never do.
type Policy struct {
	RecentTTL  time.Duration
	SearchTTL  time.Duration
	DetailsTTL time.Duration
}

// DefaultPolicy returns the stock TTLs.
func DefaultPolicy() Policy {
	return Policy{
		RecentTTL:  30 * time.Minute,
		SearchTTL:  15 * time.Minute,
		DetailsTTL: time.Hour,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.RecentTTL <= 0 {
		p.RecentTTL = d.RecentTTL
	}
	if p.SearchTTL <= 0 {
		p.SearchTTL = d.SearchTTL
	}
	if p.DetailsTTL <= 0 {
		p.DetailsTTL = d.DetailsTTL
	}
	return p
}

// Service is what views call: catalog lookups go through the cache, saves
// go straight to the downloads store.
type Service struct {
	catalog   Catalog
	cache     *cache.Cache
	downloads *downloads.Store
	prefs     *preferences.Store
	policy    Policy

	mu         sync.Mutex
	storageErr error
}

// New wires a Service. Zero TTLs in policy take the defaults.
func New(c Catalog, ch *cache.Cache, dl *downloads.Store, prefs *preferences.Store, policy Policy) *Service {
	return &Service{
		catalog:   c,
		cache:     ch,
		downloads: dl,
		prefs:     prefs,
		policy:    policy.withDefaults(),
	}
}

// NewFromStore builds the cache, downloads and preferences layers over one store.
func NewFromStore(c Catalog, store database.Store, policy Policy) *Service {
	return New(c, cache.New(store), downloads.New(store), preferences.New(store), policy)
}

// Policy returns the effective TTLs.
func (s *Service) Policy() Policy { return s.policy }

// RecentBooks returns the recently added list, from cache when live.
func (s *Service) RecentBooks(ctx context.Context) ([]models.Book, error) {
	if books, ok := cache.Load[[]models.Book](s.cache, RecentKey); ok {
		return books, nil
	}
	books, err := s.catalog.FetchRecent(ctx)
	if err != nil {
		log.Printf("[ERROR] failed to load recent books: %v", err)
		return nil, err
	}
	s.remember(RecentKey, books, s.policy.RecentTTL)
	return books, nil
}

// Search trims query and returns matching books. A blank query returns an
// empty list without touching the cache or the catalog.
func (s *Service) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Book{}, nil
	}

	key := searchCacheKey(query)
	if books, ok := cache.Load[[]models.Book](s.cache, key); ok {
		return books, nil
	}
	books, err := s.catalog.Search(ctx, query)
	if err != nil {
		log.Printf("[ERROR] search %q failed: %v", query, err)
		return nil, err
	}
	s.remember(key, books, s.policy.SearchTTL)
	return books, nil
}

// BookDetails returns the full record for id, from cache when live.
func (s *Service) BookDetails(ctx context.Context, id string) (models.Book, error) {
	key := detailsPrefix + id
	if book, ok := cache.Load[models.Book](s.cache, key); ok {
		return book, nil
	}
	book, err := s.catalog.FetchDetails(ctx, id)
	if err != nil {
		log.Printf("[ERROR] failed to load details for %q: %v", id, err)
		return models.Book{}, err
	}
	s.remember(key, book, s.policy.DetailsTTL)
	return book, nil
}

// BookDetailsOrFallback returns full details for book, or book itself when
// they cannot be fetched. The returned error is the fetch failure, if any.
func (s *Service) BookDetailsOrFallback(ctx context.Context, book models.Book) (models.Book, error) {
	detailed, err := s.BookDetails(ctx, book.ID)
	if err != nil {
		return book, err
	}
	return detailed, nil
}

// Save adds book to the downloads list. Books without a download link are
// refused with ErrDownloadUnavailable. added is false when it was already saved.
func (s *Service) Save(book models.Book) (bool, error) {
	if !book.HasDownload() {
		return false, fmt.Errorf("%w: %s", ErrDownloadUnavailable, book.ID)
	}
	return s.downloads.Add(book)
}

// Remove deletes a saved book.
func (s *Service) Remove(id string) error {
	return s.downloads.Remove(id)
}

// Downloads lists saved books, optionally fuzzy-filtered.
func (s *Service) Downloads(filter string) []models.DownloadRecord {
	return downloads.Filter(s.downloads.List(), filter)
}

// IsSaved reports whether id is in the downloads list.
func (s *Service) IsSaved(id string) bool {
	return s.downloads.Has(id)
}

// SavedBook returns the downloads entry for id.
func (s *Service) SavedBook(id string) (models.DownloadRecord, bool) {
	return s.downloads.Get(id)
}

// ClearCache drops every cached catalog response.
func (s *Service) ClearCache() (int, error) {
	return s.cache.ClearAll()
}

// ClearDownloads deletes every saved book.
func (s *Service) ClearDownloads() error {
	return s.downloads.ClearAll()
}

// Preferences returns the current display settings.
func (s *Service) Preferences() preferences.Snapshot {
	return s.prefs.Snapshot()
}

// SetTheme persists the display theme.
func (s *Service) SetTheme(t preferences.Theme) error {
	return s.prefs.SetTheme(t)
}

// SetFontSize persists the font scale.
func (s *Service) SetFontSize(f preferences.FontSize) error {
	return s.prefs.SetFontSize(f)
}

// StorageWarning returns the first background cache write failure not yet
// reported and clears it, so a view can show a single "couldn't save"
// notice. Explicit actions (Save, SetTheme, ...) return their errors directly.
func (s *Service) StorageWarning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.storageErr
	s.storageErr = nil
	return err
}

// remember writes a fetched value to the cache. A failed write only means
// the next lookup fetches again.
func (s *Service) remember(key string, value any, ttl time.Duration) {
	if err := s.cache.Put(key, value, ttl); err != nil {
		s.noteStorageFailure(err)
	}
}

func (s *Service) noteStorageFailure(err error) {
	if !errors.Is(err, database.ErrStorageUnavailable) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storageErr == nil {
		s.storageErr = err
	}
}

func searchCacheKey(query string) string {
	return searchPrefix + cases.Fold().String(query)
}
