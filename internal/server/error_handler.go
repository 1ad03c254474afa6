// file: internal/server/error_handler.go
// version: 2.0.0
// guid: 023b249f-2172-41e8-a431-6135f1c06588

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/readora/internal/catalog"
	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/library"
	"github.com/jdfalk/readora/internal/preferences"
	"github.com/jdfalk/readora/internal/server/middleware"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string, code string) {
	logErrorWithContext(c, statusCode, message)

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Code:      code,
		Status:    statusCode,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

// RespondWithNotFound sends a 404 Not Found error response
func RespondWithNotFound(c *gin.Context, resourceType string, id string) {
	message := resourceType + " not found"
	if id != "" {
		message = message + ": " + id
	}
	RespondWithError(c, http.StatusNotFound, message, "NOT_FOUND")
}

// RespondWithServiceError maps a library error onto a status code.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		RespondWithError(c, http.StatusBadGateway, err.Error(), "CATALOG_UNAVAILABLE")
	case errors.Is(err, database.ErrStorageUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, err.Error(), "STORAGE_UNAVAILABLE")
	case errors.Is(err, catalog.ErrEmptyID),
		errors.Is(err, preferences.ErrInvalidValue):
		RespondWithError(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, library.ErrDownloadUnavailable):
		RespondWithError(c, http.StatusBadRequest, err.Error(), "NO_DOWNLOAD")
	default:
		RespondWithError(c, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	logLevel := "WARN"
	if statusCode >= 500 {
		logLevel = "ERROR"
	}
	log.Printf("[%s] %s %s %d - %s (from %s, request %s)",
		logLevel, c.Request.Method, c.Request.URL.Path, statusCode, message,
		c.ClientIP(), middleware.GetRequestID(c))
}
