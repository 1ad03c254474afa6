// file: internal/server/middleware/request_size.go
// version: 2.0.0
// guid: c2b95805-7d51-4b3b-b5dd-79b69aeaa569

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds JSON request bodies. A book record is a few KB.
const DefaultMaxBodyBytes int64 = 256 << 10

func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// MaxRequestBodySize rejects declared bodies over limit with 413 and caps
// undeclared ones with http.MaxBytesReader.
func MaxRequestBodySize(limit int64) gin.HandlerFunc {
	if limit < 1 {
		limit = DefaultMaxBodyBytes
	}

	return func(c *gin.Context) {
		if !methodHasBody(c.Request.Method) {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":  "request body too large",
				"code":   "BODY_TOO_LARGE",
				"status": http.StatusRequestEntityTooLarge,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
