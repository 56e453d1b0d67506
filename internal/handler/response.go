package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// renderError renders the error page with the status mapped from err.
// Unexpected errors are logged and shown generically.
func (rn *Renderer) renderError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || httputil.StatusFromCode(appErr.Code) >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		rn.Render(w, r, http.StatusInternalServerError, pageError, view{
			Title: "Something went wrong",
			Error: "An unexpected error occurred. Please try again.",
		})
		return
	}

	title := "Request failed"
	if appErr.Code == apperrors.ErrCodeNotFound {
		title = "Not found"
	}
	rn.Render(w, r, httputil.StatusFromCode(appErr.Code), pageError, view{
		Title: title,
		Error: appErr.Message,
	})
}
