package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-analytics/internal/config"
	"sales-analytics/internal/middleware"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/server"
	"sales-analytics/internal/services"
	"sales-analytics/internal/store"
	"sales-analytics/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	storeTimeout  = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"
	appTitle      = "Sales Analytics"
	appVersion    = "1.0.0"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard(appTitle).Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// newHandler wires the routes behind the middleware chain.
func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, logger, http.HandlerFunc(handleDashboard))
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	openCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	st, err := store.Open(openCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open transaction store: %w", err)
	}
	logger.Info("transaction store ready",
		"driver", cfg.Database.Driver,
		"url", store.RedactedURL(cfg.Database),
		"table", cfg.Database.Table,
	)

	analytics := services.NewAnalytics(st, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing transaction store")
		return st.Close()
	})

	return gracefulServer.ListenAndServe(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", appVersion,
		"addr", cfg.Address(),
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
