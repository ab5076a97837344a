package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/handler"
)

// SizeLimit rejects request bodies over maxBytes. Uploads are the only
// large bodies, so one limit covers the whole site.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			handler.Render(c, http.StatusRequestEntityTooLarge, "413.html", gin.H{
				"detail": fmt.Sprintf("request body exceeds %d bytes", maxBytes),
			})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
