package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/techplan/admin-server-go/internal/httputil"
	"github.com/techplan/admin-server-go/internal/model"
)

type contextKey string

const AdminContextKey contextKey = "admin"

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// SessionReader resolves the admin of a request, or nil.
type SessionReader interface {
	Read(r *http.Request) *model.AdminIdentity
}

// AdminFromContext returns the admin stored by RequireAdmin or CurrentAdmin.
func AdminFromContext(ctx context.Context) *model.AdminIdentity {
	if admin, ok := ctx.Value(AdminContextKey).(*model.AdminIdentity); ok {
		return admin
	}
	return nil
}

func WithAdmin(ctx context.Context, admin *model.AdminIdentity) context.Context {
	return context.WithValue(ctx, AdminContextKey, admin)
}

// LoginRedirectURL is the login page carrying the originally requested path.
func LoginRedirectURL(r *http.Request) string {
	return LoginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
}

type AdminGuard struct {
	sessions SessionReader
}

func NewAdminGuard(sessions SessionReader) *AdminGuard {
	return &AdminGuard{sessions: sessions}
}

// RequireAdmin redirects to the login page when there is no session.
// Nothing downstream runs for an unauthenticated request.
func (g *AdminGuard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin := g.sessions.Read(r)
		if admin == nil {
			httputil.SeeOther(w, r, LoginRedirectURL(r))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}

// CurrentAdmin stores the admin when present and never redirects; the
// handler decides what to do with an anonymous request.
func (g *AdminGuard) CurrentAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if admin := g.sessions.Read(r); admin != nil {
			r = r.WithContext(WithAdmin(r.Context(), admin))
		}
		next.ServeHTTP(w, r)
	})
}
