package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// PageHeaders configures the response headers sent with every medrec page.
type PageHeaders struct {
	// HSTS is only turned on when sessions are served over TLS.
	HSTS       bool
	HSTSMaxAge int
	CSP        []string
}

// DefaultPageHeaders allows only same-origin assets. Pages are server rendered
// and the upload forms post back to the same host, so nothing else is needed.
func DefaultPageHeaders() PageHeaders {
	return PageHeaders{
		HSTSMaxAge: 31536000,
		CSP: []string{
			"default-src 'self'",
			"img-src 'self' data:",
			"script-src 'self'",
			"style-src 'self' 'unsafe-inline'",
			"form-action 'self'",
			"frame-ancestors 'none'",
		},
	}
}

// SecurityHeaders sets the browser hardening headers. Pages show patient
// data, so they are never cached or framed and are sent without a referrer
// to other origins.
func SecurityHeaders(cfg PageHeaders) gin.HandlerFunc {
	csp := strings.Join(cfg.CSP, "; ")
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if cfg.HSTS {
			h.Set("Strict-Transport-Security", hsts)
		}
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		c.Next()
	}
}
