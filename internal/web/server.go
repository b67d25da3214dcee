// Package web provides the HTTP API for uploading and listing feedback.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/feedbacks/internal/config"
	"github.com/JonMunkholm/feedbacks/internal/core"
	"github.com/JonMunkholm/feedbacks/internal/metrics"
	"github.com/JonMunkholm/feedbacks/internal/web/middleware"
)

// Server is the HTTP server of the feedback API.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	metrics  *metrics.Metrics
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics instruments requests and serves m on the configured metrics
// path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer wires the router for service using cfg.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Security.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter("global", s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.NotFound(notFound)
	s.router.MethodNotAllowed(methodNotAllowed)

	s.router.Get("/", s.handleInfo)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/feedbacks", func(r chi.Router) {
		r.With(chimw.Timeout(s.cfg.Server.RequestTimeout)).Get("/", s.handleListFeedback)

		if s.cfg.Rate.Enabled {
			r = r.With(s.newLimiter("upload", s.cfg.Rate.UploadLimit).middleware)
		}
		r.Post("/upload-csv", s.handleUploadCSV)
	})
}

func (s *Server) newLimiter(name string, perMinute int) *rateLimiter {
	var onReject func(string)
	if s.metrics != nil {
		onReject = s.metrics.RateLimited
	}
	rl := newRateLimiter(name, perMinute, onReject)
	s.limiters = append(s.limiters, rl)
	return rl
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections, waits for in-flight requests and
// stops the rate limiter janitors.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
