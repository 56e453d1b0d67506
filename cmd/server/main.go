package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/techplan/admin-server-go/internal/config"
	"github.com/techplan/admin-server-go/internal/database"
	"github.com/techplan/admin-server-go/internal/handler"
	"github.com/techplan/admin-server-go/internal/metrics"
	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/repository"
	"github.com/techplan/admin-server-go/internal/service"
	"github.com/techplan/admin-server-go/internal/session"
	"github.com/techplan/admin-server-go/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	adminRepo := repository.NewAdminRepository(db.DB)
	productRepo := repository.NewProductRepository(db.DB)

	blobStore, err := storage.Open(context.Background(), cfg.Blob)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open blob store")
	}
	log.Info().Str("driver", cfg.Blob.Driver).Msg("blob store ready")
	uploader := storage.NewUploader(blobStore, cfg.MaxUploadBytes(), m)

	sessions, err := session.NewManager(cfg.SessionSecrets, cfg.IsProduction(), session.WithTTL(cfg.SessionTTL()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session manager")
	}

	authService := service.NewAuthService(adminRepo, m)
	productService := service.NewProductService(productRepo, uploader, m)
	dashboardService := service.NewDashboardService(productRepo, adminRepo)

	if cfg.AdminEmail != "" {
		var name *string
		if cfg.AdminName != "" {
			name = &cfg.AdminName
		}
		if _, err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, name); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin")
		}
	}

	render, err := handler.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	guard := middleware.NewAdminGuard(sessions)

	routerCfg := handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authService, sessions, guard, render),
		Dashboard:      handler.NewDashboardHandler(dashboardService, guard, render),
		Products:       handler.NewProductHandler(productService, guard, render),
		Health:         handler.NewHealthHandler(db),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		IsProduction:   cfg.IsProduction(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		ImageOrigins:   imageOrigins(cfg.Blob),
	}
	if local, ok := blobStore.(*storage.LocalStore); ok {
		routerCfg.Uploads = local.Handler()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// imageOrigins returns non-https blob origins that the CSP must allow.
func imageOrigins(cfg config.BlobConfig) []string {
	var origins []string
	for _, raw := range []string{cfg.PublicURL, cfg.Endpoint} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || u.Scheme == "https" {
			continue
		}
		origins = append(origins, u.Scheme+"://"+u.Host)
	}
	return origins
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
