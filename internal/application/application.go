// Package application wires configuration, storage and the core service
// together for the server and the admin CLI.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/feedbacks/internal/config"
	"github.com/JonMunkholm/feedbacks/internal/core"
	"github.com/JonMunkholm/feedbacks/internal/metrics"
	"github.com/JonMunkholm/feedbacks/internal/store/postgres"
)

// App is a fully wired feedback service.
type App struct {
	Config  *config.Config
	Store   core.Store
	Service *core.Service
	Metrics *metrics.Metrics

	closers []func()
}

// ServiceOptions translates cfg into core service options. A non-nil m is
// attached as the outcome recorder.
func ServiceOptions(cfg *config.Config, m *metrics.Metrics) []core.Option {
	opts := []core.Option{
		core.WithListLimits(core.ListLimits{
			Default: cfg.List.DefaultLimit,
			Max:     cfg.List.MaxLimit,
		}),
		core.WithUploadLimiter(core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		core.WithMaxFileSize(cfg.Upload.MaxFileSize),
		core.WithUploadTimeout(cfg.Upload.Timeout),
	}
	if m != nil {
		opts = append(opts, core.WithRecorder(m))
	}
	return opts
}

// NewWithStore builds an App around an already open store.
func NewWithStore(cfg *config.Config, store core.Store, m *metrics.Metrics) (*App, error) {
	svc, err := core.NewService(store, ServiceOptions(cfg, m)...)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &App{
		Config:  cfg,
		Store:   store,
		Service: svc,
		Metrics: m,
	}, nil
}

// Open connects to PostgreSQL, creates the feedback table when
// DB_AUTO_SCHEMA is set and builds the service on top of it.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*App, error) {
	pool, err := postgres.OpenPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Info("connected to database", "name", postgres.DatabaseName(cfg.Database.URL))

	store := postgres.New(pool)
	if cfg.Database.AutoSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app, err := NewWithStore(cfg, store, m)
	if err != nil {
		pool.Close()
		return nil, err
	}
	app.closers = append(app.closers, pool.Close)
	return app, nil
}

// WaitForUploads blocks until in-flight imports finish or ctx is done.
func (a *App) WaitForUploads(ctx context.Context) error {
	limiter := a.Service.UploadLimiter()
	if limiter.ActiveCount() == 0 {
		return nil
	}
	slog.Info("waiting for uploads to complete", "active", limiter.ActiveCount())
	return limiter.WaitForDrain(ctx)
}

// Close releases the database pool, if any.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
