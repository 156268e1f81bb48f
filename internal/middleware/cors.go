package middleware

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
)

// CORS returns a middleware that sets CORS headers on every response.
// allowedOrigins can be "*" (or empty) for all, or a comma-separated list.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := parseOrigins(allowedOrigins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowOrigin := ""
		if len(origins) == 0 || origins["*"] {
			allowOrigin = "*"
		} else if origin != "" && origins[origin] {
			allowOrigin = origin
			c.Header("Vary", "Origin")
		}
		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
			c.Header("Access-Control-Expose-Headers", HeaderRequestID)
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// parseOrigins splits on commas and whitespace, so "a, b" and "a,b" are the same list.
func parseOrigins(s string) map[string]bool {
	m := make(map[string]bool)
	for _, o := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
		m[o] = true
	}
	return m
}
