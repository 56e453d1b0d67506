package middleware

import (
	"net/http"
	"strings"
)

type SecurityHeadersMiddleware struct {
	isProduction bool
	csp          string
}

// NewSecurityHeadersMiddleware builds the header set. imgOrigins are extra
// image sources, such as a non-https blob endpoint in development.
func NewSecurityHeadersMiddleware(isProduction bool, imgOrigins ...string) *SecurityHeadersMiddleware {
	img := append([]string{"'self'", "data:", "https:"}, imgOrigins...)

	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src " + strings.Join(img, " "),
		"font-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")

	return &SecurityHeadersMiddleware{isProduction: isProduction, csp: csp}
}

func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", m.csp)

		if m.isProduction {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
