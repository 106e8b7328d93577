package storage

import (
	"context"
	"time"

	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/ports"
)

// OperationObserver receives the outcome of every storage call
type OperationObserver interface {
	ObserveStorageOperation(operation string, err error, duration time.Duration)
}

// Instrumented decorates an ObjectStorage with logging and metrics
type Instrumented struct {
	next     ports.ObjectStorage
	observer OperationObserver
	logger   *logger.Logger
}

// NewInstrumented wraps next. observer may be nil when metrics are disabled.
func NewInstrumented(next ports.ObjectStorage, observer OperationObserver, log *logger.Logger) *Instrumented {
	return &Instrumented{
		next:     next,
		observer: observer,
		logger:   log.WithComponent("storage"),
	}
}

func (s *Instrumented) Download(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Download(ctx, path)
	s.record("download", path, start, err)
	return data, err
}

func (s *Instrumented) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	start := time.Now()
	err := s.next.Upload(ctx, path, data, contentType, upsert)
	s.record("upload", path, start, err)
	return err
}

func (s *Instrumented) Update(ctx context.Context, path string, data []byte, contentType string) error {
	start := time.Now()
	err := s.next.Update(ctx, path, data, contentType)
	s.record("update", path, start, err)
	return err
}

func (s *Instrumented) CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	start := time.Now()
	signed, err := s.next.CreateSignedURL(ctx, path, expiresIn)
	s.record("sign", path, start, err)
	return signed, err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.record("ping", "", start, err)
	return err
}

func (s *Instrumented) record(operation, path string, start time.Time, err error) {
	duration := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveStorageOperation(operation, err, duration)
	}
	s.logger.LogStorageOperation(operation, path, float64(duration.Nanoseconds())/1000000, err)
}
