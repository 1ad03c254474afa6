// file: internal/server/response_types.go
// version: 2.0.0
// guid: 110bbdac-b482-43e1-a16d-813ffcded6d1

package server

import (
	"github.com/jdfalk/readora/internal/models"
	"github.com/jdfalk/readora/internal/preferences"
)

// BookListResponse is returned by the recent and search endpoints.
type BookListResponse struct {
	Items   []models.Book `json:"items"`
	Count   int           `json:"count"`
	Warning string        `json:"warning,omitempty"`
}

// BookResponse is a single book plus whether it is in the downloads list.
// Partial is set when details could not be fetched and Data is the record
// the caller supplied.
type BookResponse struct {
	Data    models.Book `json:"data"`
	Saved   bool        `json:"saved"`
	Partial bool        `json:"partial,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// DownloadListResponse lists saved books.
type DownloadListResponse struct {
	Items []models.DownloadRecord `json:"items"`
	Count int                     `json:"count"`
}

// SaveResponse reports the outcome of POST /api/downloads.
type SaveResponse struct {
	Data  models.Book `json:"data"`
	Added bool        `json:"added"`
}

// PreferencesRequest is the PUT /api/preferences body. Absent fields are unchanged.
type PreferencesRequest struct {
	Theme    *string `json:"theme"`
	FontSize *string `json:"fontSize"`
}

// PreferencesResponse wraps the current settings.
type PreferencesResponse struct {
	Data preferences.Snapshot `json:"data"`
}

// ClearResponse reports how many entries a clear removed.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}
