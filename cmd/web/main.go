package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"procurement-dashboard/internal/config"
	"procurement-dashboard/internal/export"
	"procurement-dashboard/internal/middleware"
	"procurement-dashboard/internal/observability"
	"procurement-dashboard/internal/server"
	"procurement-dashboard/internal/services"
)

const csvLoadTimeout = 60 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	analytics, err := services.NewAnalytics(services.ParamsFromConfig(cfg.Analysis), logger)
	if err != nil {
		logger.Error("invalid analysis parameters", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.LoadFromCSV(ctx, cfg.Data); err != nil {
		logger.Error("failed to load procurement data", "error", err)
		os.Exit(1)
	}
	duration := time.Since(start)
	logger.Info("procurement data loaded successfully", "duration", duration)

	if cfg.Export.Enabled {
		if err := export.WriteCSVDir(cfg.Export.Dir, analytics.Report()); err != nil {
			logger.Error("failed to export report tables", "error", err, "dir", cfg.Export.Dir)
			os.Exit(1)
		}
		logger.Info("report tables exported", "dir", cfg.Export.Dir)
	}

	srv := server.NewServer(analytics, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
