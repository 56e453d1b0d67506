package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/httputil"
	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/service"
)

// genericLoginError is shown for every credential failure so the form does
// not reveal which emails exist.
const genericLoginError = "Invalid email or password"

// SessionIssuer writes and clears the session cookie.
type SessionIssuer interface {
	Issue(w http.ResponseWriter, admin *model.AdminIdentity) error
	Destroy(w http.ResponseWriter)
}

type AuthHandler struct {
	authService *service.AuthService
	sessions    SessionIssuer
	guard       *middleware.AdminGuard
	render      *Renderer
}

func NewAuthHandler(
	authService *service.AuthService,
	sessions SessionIssuer,
	guard *middleware.AdminGuard,
	render *Renderer,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		guard:       guard,
		render:      render,
	}
}

func (h *AuthHandler) Routes(r chi.Router) {
	r.With(h.guard.CurrentAdmin).Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.With(h.guard.RequireAdmin).Post("/logout", h.Logout)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirectTo := httputil.SafeRedirectTarget(r.URL.Query().Get("redirectTo"), service.DefaultLoginRedirect)

	if middleware.AdminFromContext(r.Context()) != nil {
		httputil.SeeOther(w, r, redirectTo)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageLogin, view{
		Title:      "Admin login",
		RedirectTo: redirectTo,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, pageLogin, view{
			Title:      "Admin login",
			Error:      genericLoginError,
			RedirectTo: service.DefaultLoginRedirect,
		})
		return
	}

	email := r.PostForm.Get("email")
	redirectTo := r.PostForm.Get("redirectTo")

	result, err := h.authService.Login(r.Context(), email, r.PostForm.Get("password"), redirectTo)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Login failed. Please try again."
		if apperrors.IsCredentialFailure(err) {
			status = http.StatusBadRequest
			message = genericLoginError
		}
		h.render.Render(w, r, status, pageLogin, view{
			Title:      "Admin login",
			Error:      message,
			Email:      email,
			RedirectTo: httputil.SafeRedirectTarget(redirectTo, service.DefaultLoginRedirect),
		})
		return
	}

	if err := h.sessions.Issue(w, result.Admin); err != nil {
		log.Error().Err(err).Msg("Failed to issue session")
		h.render.renderError(w, r, err)
		return
	}

	httputil.SeeOther(w, r, result.RedirectTo)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	if admin := middleware.AdminFromContext(r.Context()); admin != nil {
		log.Info().Str("admin_id", admin.ID).Msg("Admin logged out")
	}
	httputil.SeeOther(w, r, middleware.LoginPath)
}
