package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techplan/admin-server-go/internal/httputil"
	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	guard            *middleware.AdminGuard
	render           *Renderer
}

func NewDashboardHandler(dashboardService *service.DashboardService, guard *middleware.AdminGuard, render *Renderer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, guard: guard, render: render}
}

func (h *DashboardHandler) Routes(r chi.Router) {
	r.With(h.guard.CurrentAdmin).Get("/", h.Dashboard)
}

// Dashboard sends anonymous visitors to the plain login page rather than
// carrying "/" as a redirect target.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if middleware.AdminFromContext(r.Context()) == nil {
		httputil.SeeOther(w, r, middleware.LoginPath)
		return
	}

	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.render.renderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageDashboard, view{
		Title: "Dashboard",
		Stats: stats,
	})
}
