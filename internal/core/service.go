package core

import (
	"errors"
	"time"
)

// DefaultUploadTimeout bounds a single import, including the bulk insert.
const DefaultUploadTimeout = 2 * time.Minute

// DefaultMaxFileSize is the largest upload accepted, in bytes.
const DefaultMaxFileSize int64 = 5 << 20

// Recorder observes pipeline and query outcomes. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	UploadFinished(outcome string, accepted, rejected int, elapsed time.Duration)
	ListServed(items int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) UploadFinished(string, int, int, time.Duration) {}
func (nopRecorder) ListServed(int, time.Duration)                  {}

// Service provides the ingestion pipeline and the listing query engine on
// top of a Store.
type Service struct {
	store         Store
	limits        ListLimits
	limiter       *UploadLimiter
	maxFileSize   int64
	uploadTimeout time.Duration
	recorder      Recorder
}

// Option customizes a Service.
type Option func(*Service)

// WithListLimits sets the default and maximum page sizes.
func WithListLimits(l ListLimits) Option {
	return func(s *Service) { s.limits = l }
}

// WithUploadLimiter replaces the default upload limiter.
func WithUploadLimiter(l *UploadLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithMaxFileSize sets the upload size cap. Zero or less disables it.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// WithUploadTimeout bounds each import. Zero or less disables the bound.
func WithUploadTimeout(d time.Duration) Option {
	return func(s *Service) { s.uploadTimeout = d }
}

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("core: nil store")
	}

	s := &Service{
		store:         store,
		limits:        DefaultListLimits(),
		maxFileSize:   DefaultMaxFileSize,
		uploadTimeout: DefaultUploadTimeout,
		recorder:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.limits.Validate(); err != nil {
		return nil, err
	}
	if s.limiter == nil {
		s.limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	return s, nil
}

// Store returns the backing store.
func (s *Service) Store() Store {
	return s.store
}

// Limits returns the page size limits in effect.
func (s *Service) Limits() ListLimits {
	return s.limits
}

// UploadLimiter exposes the import concurrency limiter.
func (s *Service) UploadLimiter() *UploadLimiter {
	return s.limiter
}
