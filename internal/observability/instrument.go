// Package observability provides collaborator instrumentation and the
// monitoring HTTP server.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/service/storage"
)

// InstrumentedStore records latency and errors for every storage call.
type InstrumentedStore struct {
	next    storage.Store
	metrics *metrics.Metrics
}

// InstrumentStore wraps next with metrics and debug logging.
func InstrumentStore(next storage.Store, m *metrics.Metrics) *InstrumentedStore {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	start := time.Now()
	body, err := s.next.Get(ctx, bucket, key)
	s.observe("get", bucket, key, start, err)
	return body, err
}

func (s *InstrumentedStore) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]string, error) {
	start := time.Now()
	keys, err := s.next.List(ctx, bucket, prefix, maxKeys)
	s.observe("list", bucket, prefix, start, err)
	return keys, err
}

func (s *InstrumentedStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	start := time.Now()
	err := s.next.Put(ctx, bucket, key, body, contentType)
	s.observe("put", bucket, key, start, err)
	return err
}

func (s *InstrumentedStore) observe(op, bucket, key string, start time.Time, err error) {
	duration := time.Since(start)
	s.metrics.RecordStorage(op, storageErrorType(err), duration.Seconds())

	log.Debug().
		Str("op", op).
		Str("bucket", bucket).
		Str("key", key).
		Dur("duration", duration).
		Bool("success", err == nil).
		Msg("Storage call")
}

func storageErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
