// file: internal/testutil/mock_catalog.go
// version: 2.0.0
// guid: 8e2ab7ff-d855-4859-b03d-cd66b5fc3694

package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockCatalog is an httptest server that mimics the catalog API. Responses
// are matched by URL path prefix; the longest matching prefix wins.
type MockCatalog struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
	hits      map[string]int
	total     int
}

// MockResponse is a canned reply.
type MockResponse struct {
	Status int
	Body   string
}

// MockCatalogServer starts a fake catalog. It is closed via t.Cleanup.
func MockCatalogServer(t *testing.T, responses map[string]string) *MockCatalog {
	t.Helper()
	m := &MockCatalog{
		responses: make(map[string]MockResponse),
		hits:      make(map[string]int),
	}
	for path, body := range responses {
		m.responses[path] = MockResponse{Status: http.StatusOK, Body: body}
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

// Respond sets the reply for a path prefix.
func (m *MockCatalog) Respond(path string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{Status: status, Body: body}
}

// Hits returns how many requests matched the path prefix.
func (m *MockCatalog) Hits(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

// TotalHits returns how many requests the server received.
func (m *MockCatalog) TotalHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func (m *MockCatalog) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.total++
	best := ""
	for prefix := range m.responses {
		if strings.HasPrefix(r.URL.Path, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	resp, ok := m.responses[best]
	if ok {
		m.hits[best]++
	}
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

// CatalogRecentResponse is a recent-books payload with two books.
const CatalogRecentResponse = `{
	"status": "ok",
	"total": "2",
	"books": [
		{"id": "1", "title": "Go in Practice", "authors": "Matt Butcher", "image": "https://example.org/1.jpg", "url": "https://example.org/books/1"},
		{"id": "2", "title": "Clean Code", "subtitle": "A Handbook", "authors": "Robert C. Martin", "image": "https://example.org/2.jpg", "url": "https://example.org/books/2"}
	]
}`

// CatalogSearchResponse is a search payload with one match.
const CatalogSearchResponse = `{
	"status": "ok",
	"total": "1",
	"books": [
		{"id": "7", "title": "The Go Programming Language", "authors": "Alan Donovan, Brian Kernighan", "image": "https://example.org/7.jpg", "url": "https://example.org/books/7"}
	]
}`

// CatalogDetailsResponse is a details payload for id 7.
const CatalogDetailsResponse = `{
	"status": "ok",
	"id": "7",
	"title": "The Go Programming Language",
	"authors": "Alan Donovan, Brian Kernighan",
	"image": "https://example.org/7.jpg",
	"url": "https://example.org/books/7",
	"download": "https://example.org/download/7.pdf",
	"description": "<p>The authoritative resource.</p>",
	"year": "2015",
	"pages": "380",
	"publisher": "Addison-Wesley"
}`

// CatalogEmptyResponse has no books collection at all.
const CatalogEmptyResponse = `{"status":"ok","total":"0"}`
