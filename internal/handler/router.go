package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/techplan/admin-server-go/internal/config"
	"github.com/techplan/admin-server-go/internal/metrics"
	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/storage"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Products  *ProductHandler
	Health    *HealthHandler

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	// Uploads serves locally stored blobs; nil for remote stores.
	Uploads http.Handler

	IsProduction   bool
	MaxUploadBytes int64
	ImageOrigins   []string
}

func NewRouter(cfg RouterConfig) chi.Router {
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.IsProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(cfg.MaxUploadBytes)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(cfg.IsProduction, cfg.ImageOrigins...)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(cfg.Metrics.Middleware)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", cfg.Health.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Uploads != nil {
		r.Handle(storage.LocalPrefix+"/*", cfg.Uploads)
	}

	r.Group(func(r chi.Router) {
		r.Use(bodyLimitMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)

		cfg.Auth.Routes(r)
		cfg.Dashboard.Routes(r)
		cfg.Products.Routes(r)
	})

	return r
}
