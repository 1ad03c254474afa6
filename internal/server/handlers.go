// file: internal/server/handlers.go
// version: 1.0.0
// guid: 13ba558f-e00d-4b24-867f-15466bf2ed39

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/readora/internal/catalog"
	"github.com/jdfalk/readora/internal/models"
	"github.com/jdfalk/readora/internal/preferences"
)

// warning drains the service's pending storage warning into a string.
func (s *Server) warning() string {
	if err := s.svc.StorageWarning(); err != nil {
		return "couldn't save to local storage: " + err.Error()
	}
	return ""
}

func (s *Server) listRecent(c *gin.Context) {
	books, err := s.svc.RecentBooks(c.Request.Context())
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, BookListResponse{Items: books, Count: len(books), Warning: s.warning()})
}

func (s *Server) searchBooks(c *gin.Context) {
	books, err := s.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, BookListResponse{Items: books, Count: len(books), Warning: s.warning()})
}

// getBook returns full details. When the catalog is unreachable but the
// book is in the downloads list, the saved record is returned as partial.
func (s *Server) getBook(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	book, err := s.svc.BookDetails(c.Request.Context(), id)
	if err != nil {
		rec, saved := s.svc.SavedBook(id)
		if !saved || !errors.Is(err, catalog.ErrUnavailable) {
			RespondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, BookResponse{
			Data:    rec.Book,
			Saved:   true,
			Partial: true,
			Warning: "details unavailable: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, BookResponse{Data: book, Saved: s.svc.IsSaved(book.ID), Warning: s.warning()})
}

func (s *Server) listDownloads(c *gin.Context) {
	records := s.svc.Downloads(c.Query("filter"))
	c.JSON(http.StatusOK, DownloadListResponse{Items: records, Count: len(records)})
}

// saveDownload accepts a Book. A body carrying only an id is resolved
// through the details lookup first.
func (s *Server) saveDownload(c *gin.Context) {
	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		RespondWithBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	book.ID = strings.TrimSpace(book.ID)
	if book.ID == "" {
		RespondWithBadRequest(c, "book id is required")
		return
	}

	if !book.HasDownload() {
		detailed, err := s.svc.BookDetails(c.Request.Context(), book.ID)
		if err != nil {
			RespondWithServiceError(c, err)
			return
		}
		book = detailed
	}

	added, err := s.svc.Save(book)
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		s.events.DownloadsChanged(len(s.svc.Downloads("")))
	}
	c.JSON(status, SaveResponse{Data: book, Added: added})
}

func (s *Server) removeDownload(c *gin.Context) {
	id := c.Param("id")
	if !s.svc.IsSaved(id) {
		RespondWithNotFound(c, "download", id)
		return
	}
	if err := s.svc.Remove(id); err != nil {
		RespondWithServiceError(c, err)
		return
	}
	s.events.DownloadsChanged(len(s.svc.Downloads("")))
	c.Status(http.StatusNoContent)
}

func (s *Server) clearDownloads(c *gin.Context) {
	n := len(s.svc.Downloads(""))
	if err := s.svc.ClearDownloads(); err != nil {
		RespondWithServiceError(c, err)
		return
	}
	s.events.DownloadsChanged(0)
	c.JSON(http.StatusOK, ClearResponse{Cleared: n})
}

func (s *Server) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, PreferencesResponse{Data: s.svc.Preferences()})
}

// updatePreferences validates every supplied field before writing any.
func (s *Server) updatePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondWithBadRequest(c, "invalid preferences payload: "+err.Error())
		return
	}

	var theme preferences.Theme
	if req.Theme != nil {
		t, ok := preferences.ParseTheme(*req.Theme)
		if !ok {
			RespondWithServiceError(c, invalidPreference("theme", *req.Theme))
			return
		}
		theme = t
	}
	var size preferences.FontSize
	if req.FontSize != nil {
		f, ok := preferences.ParseFontSize(*req.FontSize)
		if !ok {
			RespondWithServiceError(c, invalidPreference("fontSize", *req.FontSize))
			return
		}
		size = f
	}

	if theme != "" {
		if err := s.svc.SetTheme(theme); err != nil {
			RespondWithServiceError(c, err)
			return
		}
	}
	if size != "" {
		if err := s.svc.SetFontSize(size); err != nil {
			RespondWithServiceError(c, err)
			return
		}
	}
	prefs := s.svc.Preferences()
	if theme != "" || size != "" {
		s.events.PreferencesChanged(string(prefs.Theme), string(prefs.FontSize))
	}
	c.JSON(http.StatusOK, PreferencesResponse{Data: prefs})
}

func invalidPreference(field, value string) error {
	return fmt.Errorf("%w: %s %q", preferences.ErrInvalidValue, field, value)
}

func (s *Server) clearCache(c *gin.Context) {
	n, err := s.svc.ClearCache()
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}
	s.events.CacheCleared(n)
	c.JSON(http.StatusOK, ClearResponse{Cleared: n})
}
