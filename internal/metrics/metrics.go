// Package metrics defines the Prometheus collectors of the feedback service
// and exposes them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/feedbacks/internal/core"
)

const namespace = "feedbacks"

// Metrics holds all collectors. It implements core.Recorder.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	UploadsTotal         *prometheus.CounterVec
	UploadDuration       prometheus.Histogram
	RowsImportedTotal    prometheus.Counter
	RowsRejectedTotal    prometheus.Counter
	ListDuration         prometheus.Histogram
	ListPageSize         prometheus.Histogram
	RateLimitedTotal     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var _ core.Recorder = (*Metrics)(nil)

// New creates the collectors and registers them on reg. When reg is also a
// prometheus.Gatherer, Handler serves exactly what was registered there.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served.",
			},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "csv_uploads_total",
				Help:      "CSV imports by outcome.",
			},
			[]string{"outcome"},
		),
		UploadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "csv_upload_duration_seconds",
				Help:      "Time from receiving a CSV upload to commit or rejection.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		RowsImportedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "csv_rows_imported_total",
				Help:      "Feedback rows persisted by CSV imports.",
			},
		),
		RowsRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "csv_rows_rejected_total",
				Help:      "CSV rows dropped by validation.",
			},
		),
		ListDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "list_query_duration_seconds",
				Help:      "Latency of the listing data and count queries.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		ListPageSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "list_page_items",
				Help:      "Number of records returned per listing page.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50},
			},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejected_total",
				Help:      "Requests rejected by the per-IP rate limiters.",
			},
			[]string{"limiter"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.UploadsTotal,
		m.UploadDuration,
		m.RowsImportedTotal,
		m.RowsRejectedTotal,
		m.ListDuration,
		m.ListPageSize,
		m.RateLimitedTotal,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the exposition format for the registry m was created with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// UploadFinished implements core.Recorder.
func (m *Metrics) UploadFinished(outcome string, accepted, rejected int, elapsed time.Duration) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	m.UploadDuration.Observe(elapsed.Seconds())
	m.RowsImportedTotal.Add(float64(accepted))
	m.RowsRejectedTotal.Add(float64(rejected))
}

// ListServed implements core.Recorder.
func (m *Metrics) ListServed(items int, elapsed time.Duration) {
	m.ListDuration.Observe(elapsed.Seconds())
	m.ListPageSize.Observe(float64(items))
}

// RateLimited counts a request rejected by the named limiter.
func (m *Metrics) RateLimited(limiter string) {
	m.RateLimitedTotal.WithLabelValues(limiter).Inc()
}

// Middleware records request count, latency and in-flight requests. Requests
// are labeled by chi route pattern, so it must run inside a chi router.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
