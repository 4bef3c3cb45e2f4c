package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// apiCSP: API hanya mengembalikan JSON, file export dan gambar upload
const apiCSP = "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'"

// SecurityHeaders. HSTS hanya dikirim untuk request HTTPS (langsung atau lewat proxy).
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", apiCSP)

		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		// tracking order dan cart tidak boleh di-cache proxy
		if !strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
