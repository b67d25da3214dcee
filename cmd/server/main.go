package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/feedbacks/internal/application"
	"github.com/JonMunkholm/feedbacks/internal/config"
	"github.com/JonMunkholm/feedbacks/internal/logging"
	"github.com/JonMunkholm/feedbacks/internal/metrics"
	"github.com/JonMunkholm/feedbacks/internal/web"
)

func main() {
	// Overload lets a local .env win over variables already exported.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.NewRegistry())
	}

	app, err := application.Open(context.Background(), cfg, m)
	if err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var opts []web.Option
	if m != nil {
		opts = append(opts, web.WithMetrics(m))
	}
	server := web.NewServer(app.Service, cfg, opts...)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := app.WaitForUploads(shutdownCtx); err != nil {
			slog.Warn("uploads did not complete in time", "error", err)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		app.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
