// file: internal/models/book.go
// version: 1.0.0
// guid: f2a25ba1-cd37-4ac9-9e95-01c1b04e6ff7

package models

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Book is a catalog record. Only ID is guaranteed to be set.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Authors     string `json:"authors"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Download    string `json:"download,omitempty"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
	Pages       string `json:"pages,omitempty"`
	Language    string `json:"language,omitempty"`
	Filesize    string `json:"filesize,omitempty"`
	Category    string `json:"category,omitempty"`
	Preview     string `json:"preview,omitempty"`
}

// DownloadRecord is a saved book stamped with the time it was first saved.
type DownloadRecord struct {
	Book
	SavedAt time.Time `json:"savedAt"`
}

// HasDownload reports whether the catalog offered a download link.
func (b Book) HasDownload() bool {
	return strings.TrimSpace(b.Download) != ""
}

// DisplayTitle joins title and subtitle the way listings show them.
func (b Book) DisplayTitle() string {
	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = b.ID
	}
	if sub := strings.TrimSpace(b.Subtitle); sub != "" {
		return title + ": " + sub
	}
	return title
}

// PlainDescription returns the description with markup stripped and
// whitespace collapsed. Catalog descriptions sometimes carry HTML.
func (b Book) PlainDescription() string {
	if b.Description == "" {
		return ""
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(b.Description))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			// Block-level breaks would otherwise glue adjacent words together.
			sb.WriteByte(' ')
		}
	}
}
