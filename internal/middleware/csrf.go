package middleware

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/techplan/admin-server-go/internal/config"
	"github.com/techplan/admin-server-go/internal/util"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFieldName  = "csrf_token"

	CSRFTokenContextKey contextKey = "csrfToken"

	// multipart parts beyond this spill to temp files
	multipartMemory = 8 << 20
)

// CSRFToken returns the token to embed in forms rendered for this request.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(CSRFTokenContextKey).(string); ok {
		return token
	}
	return ""
}

// CSRFMiddleware provides CSRF protection for state-changing requests
// using the double-submit cookie pattern. The token is accepted from the
// X-CSRF-Token header or from the csrf_token form field.
type CSRFMiddleware struct {
	isProduction bool
}

func NewCSRFMiddleware(isProduction bool) *CSRFMiddleware {
	return &CSRFMiddleware{isProduction: isProduction}
}

func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			token, err := util.GenerateToken()
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "Failed to generate security token",
				})
				return
			}
			m.setCSRFCookie(w, token)
			cookie = &http.Cookie{Value: token}
		}

		r = r.WithContext(context.WithValue(r.Context(), CSRFTokenContextKey, cookie.Value))

		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(CSRFHeaderName)
		if submitted == "" {
			if err := parseForm(r); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
						"error": "Request body too large",
					})
					return
				}
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "Malformed form body",
				})
				return
			}
			submitted = r.PostForm.Get(CSRFFieldName)
		}

		if submitted == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Missing CSRF token",
			})
			return
		}

		if !util.ConstantTimeEqual(cookie.Value, submitted) {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Invalid CSRF token",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *CSRFMiddleware) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: false, // readable by scripts that send the header
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseForm parses urlencoded and multipart bodies. Handlers see the parsed
// result through r.PostForm and r.MultipartForm.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
