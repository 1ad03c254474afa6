// file: internal/server/server_test.go
// version: 2.0.0
// guid: ab388874-f129-4903-acd7-4c885bead3b8

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/readora/internal/catalog"
	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/library"
	"github.com/jdfalk/readora/internal/models"
	"github.com/jdfalk/readora/internal/realtime"
	"github.com/jdfalk/readora/internal/server/middleware"
	"github.com/jdfalk/readora/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server  *Server
	catalog *testutil.MockCatalog
	store   *database.MemoryStore
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock := testutil.MockCatalogServer(t, map[string]string{
		"/recent":   testutil.CatalogRecentResponse,
		"/search/":  testutil.CatalogSearchResponse,
		"/book/7":   testutil.CatalogDetailsResponse,
		"/book/404": `{"status":"not found"}`,
	})
	store := database.NewMemoryStore()
	svc := library.NewFromStore(catalog.NewClient(mock.URL), store, library.DefaultPolicy())

	cfg := GetDefaultServerConfig()
	cfg.RequestsPerMinute = 0
	return &testEnv{server: NewServer(svc, cfg), catalog: mock, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRecentIsCached(t *testing.T) {
	env := setupTestServer(t)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/api/recent", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[BookListResponse](t, rec)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Clean Code: A Handbook", resp.Items[1].DisplayTitle())
		assert.Empty(t, resp.Warning)
	}
	assert.Equal(t, 1, env.catalog.Hits("/recent"))
}

func TestRecentCatalogDown(t *testing.T) {
	env := setupTestServer(t)
	env.catalog.Respond("/recent", http.StatusServiceUnavailable, "")

	rec := env.do(t, http.MethodGet, "/api/recent", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "CATALOG_UNAVAILABLE", resp.Code)
	assert.NotEmpty(t, resp.RequestID)
	assert.Contains(t, rec.Body.String(), `"request_id":"`+rec.Header().Get(middleware.RequestIDHeader)+`"`)
}

func TestRecentReportsStorageWarningOnce(t *testing.T) {
	env := setupTestServer(t)
	env.store.WriteErr = errors.New("disk full")

	first := decode[BookListResponse](t, env.do(t, http.MethodGet, "/api/recent", nil))
	assert.Equal(t, 2, first.Count)
	assert.Contains(t, first.Warning, "couldn't save")

	env.store.WriteErr = nil
	second := decode[BookListResponse](t, env.do(t, http.MethodGet, "/api/recent", nil))
	assert.Empty(t, second.Warning)
}

func TestSearch(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/api/search?q=go+lang", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BookListResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "7", resp.Items[0].ID)

	blank := decode[BookListResponse](t, env.do(t, http.MethodGet, "/api/search?q=%20%20", nil))
	assert.Equal(t, 0, blank.Count)
	assert.NotNil(t, blank.Items)
	assert.Equal(t, 1, env.catalog.Hits("/search/"))
}

func TestGetBook(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/api/books/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BookResponse](t, rec)
	assert.Equal(t, "2015", resp.Data.Year)
	assert.False(t, resp.Saved)
	assert.False(t, resp.Partial)

	missing := env.do(t, http.MethodGet, "/api/books/404", nil)
	assert.Equal(t, http.StatusBadGateway, missing.Code)
}

func TestGetBookFallsBackToSavedRecord(t *testing.T) {
	env := setupTestServer(t)

	saved := models.Book{ID: "9", Title: "Offline", Download: "https://example.org/9.pdf"}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/downloads", saved).Code)
	env.catalog.Respond("/book/9", http.StatusInternalServerError, "")

	rec := env.do(t, http.MethodGet, "/api/books/9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BookResponse](t, rec)
	assert.True(t, resp.Partial)
	assert.True(t, resp.Saved)
	assert.Equal(t, "Offline", resp.Data.Title)
	assert.Contains(t, resp.Warning, "details unavailable")
}

func TestSaveDownloadFlow(t *testing.T) {
	env := setupTestServer(t)

	// Only an id: resolved through details, which carry a download link.
	rec := env.do(t, http.MethodPost, "/api/downloads", map[string]string{"id": "7"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[SaveResponse](t, rec)
	assert.True(t, saved.Added)
	assert.Equal(t, "https://example.org/download/7.pdf", saved.Data.Download)

	again := env.do(t, http.MethodPost, "/api/downloads", map[string]string{"id": "7"})
	assert.Equal(t, http.StatusOK, again.Code)
	assert.False(t, decode[SaveResponse](t, again).Added)

	list := decode[DownloadListResponse](t, env.do(t, http.MethodGet, "/api/downloads", nil))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "7", list.Items[0].ID)
	assert.False(t, list.Items[0].SavedAt.IsZero())

	filtered := decode[DownloadListResponse](t, env.do(t, http.MethodGet, "/api/downloads?filter=kernighan", nil))
	assert.Equal(t, 1, filtered.Count)
	none := decode[DownloadListResponse](t, env.do(t, http.MethodGet, "/api/downloads?filter=zzzz", nil))
	assert.Equal(t, 0, none.Count)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/downloads/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/downloads/7", nil).Code)
}

func TestSaveDownloadRejectsBadInput(t *testing.T) {
	env := setupTestServer(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/downloads", map[string]string{"title": "no id"}).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/downloads", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Details without a download link cannot be saved.
	env.catalog.Respond("/book/3", http.StatusOK, `{"status":"ok","id":"3","title":"No PDF"}`)
	noLink := env.do(t, http.MethodPost, "/api/downloads", map[string]string{"id": "3"})
	assert.Equal(t, http.StatusBadRequest, noLink.Code)
	assert.Equal(t, "NO_DOWNLOAD", decode[ErrorResponse](t, noLink).Code)
}

func TestSaveDownloadStorageUnavailable(t *testing.T) {
	env := setupTestServer(t)
	env.store.WriteErr = errors.New("quota exceeded")

	rec := env.do(t, http.MethodPost, "/api/downloads", models.Book{ID: "5", Download: "https://example.org/5.pdf"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", decode[ErrorResponse](t, rec).Code)
}

func TestClearDownloads(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodPost, "/api/downloads", models.Book{ID: "1", Download: "https://example.org/1.pdf"})
	env.do(t, http.MethodPost, "/api/downloads", models.Book{ID: "2", Download: "https://example.org/2.pdf"})

	rec := env.do(t, http.MethodDelete, "/api/downloads", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[ClearResponse](t, rec).Cleared)
	assert.Equal(t, 0, decode[DownloadListResponse](t, env.do(t, http.MethodGet, "/api/downloads", nil)).Count)
}

func TestPreferences(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"theme":"light","fontSize":"medium"}}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/preferences", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"theme":"dark","fontSize":"medium"}}`, rec.Body.String())

	// An invalid field rejects the whole update.
	rec = env.do(t, http.MethodPut, "/api/preferences", map[string]string{"theme": "light", "fontSize": "huge"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodGet, "/api/preferences", nil)
	assert.JSONEq(t, `{"data":{"theme":"dark","fontSize":"medium"}}`, rec.Body.String())
}

func TestClearCache(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodGet, "/api/recent", nil)
	env.do(t, http.MethodGet, "/api/books/7", nil)

	rec := env.do(t, http.MethodDelete, "/api/cache", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[ClearResponse](t, rec).Cleared)

	env.do(t, http.MethodGet, "/api/recent", nil)
	assert.Equal(t, 2, env.catalog.Hits("/recent"))
}

func TestMutationsPublishEvents(t *testing.T) {
	env := setupTestServer(t)
	listener := realtime.NewClient("test")
	env.server.Events().RegisterClient(listener)
	defer env.server.Events().UnregisterClient("test")

	next := func() *realtime.Event {
		select {
		case e := <-listener.Channel:
			return e
		default:
			t.Fatal("expected an event")
			return nil
		}
	}

	env.do(t, http.MethodPost, "/api/downloads", map[string]string{"id": "7"})
	e := next()
	assert.Equal(t, realtime.EventDownloadsChanged, e.Type)
	assert.Equal(t, 1, e.Data["count"])

	// A repeat save changes nothing and stays quiet.
	env.do(t, http.MethodPost, "/api/downloads", map[string]string{"id": "7"})
	assert.Empty(t, listener.Channel)

	env.do(t, http.MethodPut, "/api/preferences", map[string]string{"fontSize": "large"})
	e = next()
	assert.Equal(t, realtime.EventPreferencesChanged, e.Type)
	assert.Equal(t, "large", e.Data["fontSize"])

	env.do(t, http.MethodDelete, "/api/cache", nil)
	assert.Equal(t, realtime.EventCacheCleared, next().Type)

	env.do(t, http.MethodDelete, "/api/downloads", nil)
	e = next()
	assert.Equal(t, realtime.EventDownloadsChanged, e.Type)
	assert.Equal(t, 0, e.Data["count"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodGet, "/api/recent", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "readora_catalog_requests_total")
	assert.Contains(t, rec.Body.String(), "readora_cache_lookups_total")
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodOptions, "/api/recent", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitedAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := testutil.MockCatalogServer(t, map[string]string{"/recent": testutil.CatalogRecentResponse})
	svc := library.NewFromStore(catalog.NewClient(mock.URL), database.NewMemoryStore(), library.Policy{})

	cfg := GetDefaultServerConfig()
	cfg.RequestsPerMinute = 1
	srv := NewServer(svc, cfg)

	codes := make([]int, 0, 2)
	var limited *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		limited = httptest.NewRecorder()
		srv.Handler().ServeHTTP(limited, httptest.NewRequest(http.MethodGet, "/api/recent", nil))
		codes = append(codes, limited.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	body := decode[ErrorResponse](t, limited)
	assert.Equal(t, "RATE_LIMITED", body.Code)
	assert.Equal(t, limited.Header().Get(middleware.RequestIDHeader), body.RequestID)
	assert.NotEmpty(t, body.RequestID)

	// Health checks are outside the limited group.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBurstFor(t *testing.T) {
	assert.Equal(t, 1, burstFor(1))
	assert.Equal(t, 1, burstFor(6))
	assert.Equal(t, 20, burstFor(120))
}
