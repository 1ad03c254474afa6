// file: internal/server/middleware/request_size_test.go
// version: 2.0.0
// guid: 369d16fb-6621-4c38-81c5-cc4d2c9a0ecc

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMethodHasBody(t *testing.T) {
	t.Parallel()

	assert.True(t, methodHasBody(http.MethodPost))
	assert.True(t, methodHasBody(http.MethodPut))
	assert.True(t, methodHasBody(http.MethodPatch))
	assert.False(t, methodHasBody(http.MethodGet))
	assert.False(t, methodHasBody(http.MethodDelete))
}

func TestMaxRequestBodySize(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(8))
	router.POST("/api/downloads", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/api/downloads", func(c *gin.Context) { c.Status(http.StatusOK) })

	over := httptest.NewRequest(http.MethodPost, "/api/downloads", bytes.NewReader(bytes.Repeat([]byte("a"), 9)))
	overResp := httptest.NewRecorder()
	router.ServeHTTP(overResp, over)
	assert.Equal(t, http.StatusRequestEntityTooLarge, overResp.Code)
	assert.Contains(t, overResp.Body.String(), "BODY_TOO_LARGE")

	within := httptest.NewRequest(http.MethodPost, "/api/downloads", bytes.NewReader([]byte("{}")))
	withinResp := httptest.NewRecorder()
	router.ServeHTTP(withinResp, within)
	assert.Equal(t, http.StatusOK, withinResp.Code)

	// Undeclared length is still capped by the reader.
	chunked := httptest.NewRequest(http.MethodPost, "/api/downloads", bytes.NewReader(bytes.Repeat([]byte("b"), 32)))
	chunked.ContentLength = -1
	chunkedResp := httptest.NewRecorder()
	router.ServeHTTP(chunkedResp, chunked)
	assert.Equal(t, http.StatusRequestEntityTooLarge, chunkedResp.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/downloads", nil)
	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, get)
	assert.Equal(t, http.StatusOK, getResp.Code)
}

func TestMaxRequestBodySizeDefault(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(0))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader(bytes.Repeat([]byte("a"), 1024)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
