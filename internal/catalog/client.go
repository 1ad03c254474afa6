// file: internal/catalog/client.go
// version: 1.0.0
// guid: 8a04dabb-9a90-48cb-8f96-b6fac858ed57

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jdfalk/readora/internal/metrics"
	"github.com/jdfalk/readora/internal/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public dbooks.org API.
const DefaultBaseURL = "https://www.dbooks.org/api"

// Operation names used in errors and metrics.
const (
	OpRecent  = "recent"
	OpSearch  = "search"
	OpDetails = "details"
)

// Client performs read-only lookups against the remote catalog. It never
// retries and has no timeout of its own: every call is bounded by the
// caller's context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit spaces requests to at most rps per second. rps <= 0 disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a catalog client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "readora",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromEnv creates a client honouring READORA_CATALOG_BASE_URL.
func NewClientFromEnv(opts ...Option) *Client {
	return NewClient(os.Getenv("READORA_CATALOG_BASE_URL"), opts...)
}

// BaseURL returns the catalog root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type listResponse struct {
	Status string        `json:"status"`
	Books  []models.Book `json:"books"`
}

type detailsResponse struct {
	models.Book
	Status string `json:"status"`
}

// FetchRecent returns the catalog's recently added books. A payload
// without a books collection yields an empty list.
func (c *Client) FetchRecent(ctx context.Context) ([]models.Book, error) {
	var resp listResponse
	if err := c.get(ctx, OpRecent, "/recent", &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Books), nil
}

// Search returns books matching query. A blank query returns an empty list
// without contacting the catalog. The query is sent as given.
func (c *Client) Search(ctx context.Context, query string) ([]models.Book, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Book{}, nil
	}
	var resp listResponse
	if err := c.get(ctx, OpSearch, "/search/"+url.PathEscape(query), &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Books), nil
}

// FetchDetails returns the full record for id.
func (c *Client) FetchDetails(ctx context.Context, id string) (models.Book, error) {
	if strings.TrimSpace(id) == "" {
		return models.Book{}, ErrEmptyID
	}
	var resp detailsResponse
	if err := c.get(ctx, OpDetails, "/book/"+url.PathEscape(id), &resp); err != nil {
		return models.Book{}, err
	}
	// dbooks reports unknown ids in-band with a 200.
	if resp.Status != "" && !strings.EqualFold(resp.Status, "ok") {
		return models.Book{}, &UnavailableError{Op: OpDetails, Err: fmt.Errorf("book %q: catalog status %q", id, resp.Status)}
	}
	book := resp.Book
	if book.ID == "" {
		book.ID = id
	}
	return book, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveCatalogRequest(op, time.Since(start), err) }()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return &UnavailableError{Op: op, Err: werr}
		}
	}

	req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if rerr != nil {
		return &UnavailableError{Op: op, Err: rerr}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		return &UnavailableError{Op: op, Err: derr}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &UnavailableError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("catalog returned status %d", resp.StatusCode),
		}
	}

	if jerr := json.NewDecoder(resp.Body).Decode(out); jerr != nil {
		return &UnavailableError{Op: op, Err: fmt.Errorf("failed to decode response: %w", jerr)}
	}
	return nil
}

func nonNil(books []models.Book) []models.Book {
	if books == nil {
		return []models.Book{}
	}
	return books
}
