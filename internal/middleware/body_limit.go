package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields and part headers next to a
// photo of the maximum size.
const multipartOverhead = 64 * 1024

// LimitBody rejects request bodies larger than maxBytes plus multipart
// overhead before any handler reads them.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	limit := maxBytes + multipartOverhead
	msg := fmt.Sprintf("upload exceeds %d MB", maxBytes>>20)
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": msg})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
