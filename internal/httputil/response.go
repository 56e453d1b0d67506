package httputil

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code"`
	Details any                 `json:"details,omitempty"`
}

// WriteError writes an AppError as an HTTP response with appropriate status code
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	WriteJSON(w, StatusFromCode(appErr.Code), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// StatusFromCode maps ErrorCode to HTTP status code
func StatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	// 400 Bad Request. Credential failures are deliberately 400, not 401,
	// so the login form is re-rendered.
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeMissingRequired,
		apperrors.ErrCodeInvalidIntent,
		apperrors.ErrCodeAccountNotFound,
		apperrors.ErrCodeInvalidCredentials:
		return http.StatusBadRequest

	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound

	case apperrors.ErrCodeUploadFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// SeeOther redirects a form submission with 303 so the browser follows up with GET.
func SeeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeRedirectTarget returns target when it is a same-site absolute path,
// otherwise fallback. Control bytes and backslashes are rejected anywhere
// since browsers strip or rewrite them before resolving the URL.
func SafeRedirectTarget(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	for i := 0; i < len(target); i++ {
		if b := target[i]; b < 0x20 || b == 0x7f || b == '\\' {
			return fallback
		}
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
