package middleware

import (
	"net/http"
)

const (
	DefaultMaxBodySize = 1 << 20 // 1MB

	// room for the non-file form fields next to the upload
	formOverhead = 64 << 10
)

type BodyLimitMiddleware struct {
	maxSize int64
}

// NewBodyLimitMiddleware caps request bodies at maxSize plus a small
// allowance for the other form fields of an upload.
func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	return &BodyLimitMiddleware{maxSize: maxSize + formOverhead}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.ContentLength > m.maxSize {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		next.ServeHTTP(w, r)
	})
}
