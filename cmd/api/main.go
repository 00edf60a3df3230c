// Package main is the entrypoint for the Recordbox API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recordbox/recordbox/internal/auth"
	"github.com/recordbox/recordbox/internal/config"
	"github.com/recordbox/recordbox/internal/handler"
	"github.com/recordbox/recordbox/internal/middleware"
	"github.com/recordbox/recordbox/internal/repository"
	"github.com/recordbox/recordbox/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseDSN())
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", err.Error()),
			slog.String("database_url", redactURL(cfg.DatabaseDSN())),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Create schema if missing
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Token codec
	codec, err := auth.NewTokenCodec(cfg.SecretKey, cfg.SigningAlg, cfg.TokenTTL())
	if err != nil {
		logger.Error("failed to build token codec", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo)
	authHandler := handler.NewAuthHandler(codec, logger)
	recordHandler := handler.NewRecordHandler(logger)

	// Setup router
	r := setupRouter(healthHandler, authHandler, recordHandler, repo, codec, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"project", cfg.ProjectName,
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	recordHandler *handler.RecordHandler,
	repo *repository.Repository,
	codec *auth.TokenCodec,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Accept both /records and /records/ style paths.
	r.Use(chimiddleware.StripSlashes)

	// Health endpoints (no session, no auth)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// API v1: every request gets one database session for its lifetime,
	// then identity resolution. Enforcement is per-subtree via RequireUser.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.DBSession(middleware.SessionConfig{
			Logger:     logger,
			Repository: repo,
		}))
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger: logger,
			Codec:  codec,
		}))

		r.Post("/signin", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Route("/records", func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/", recordHandler.List)
			r.Post("/", recordHandler.Create)
			r.Get("/{recordID}", recordHandler.Get)
			r.Put("/{recordID}", recordHandler.Update)
			r.Patch("/{recordID}", recordHandler.Patch)
			r.Delete("/{recordID}", recordHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// redactURL strips credentials from a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		parsed.User = url.User(parsed.User.Username())
	}

	return parsed.String()
}
