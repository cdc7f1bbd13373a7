// Package discovery enqueues a work item for every metadata artifact under a prefix.
package discovery

import (
	"context"
	"strings"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/service/storage"
)

// MetadataSuffix identifies metadata artifacts.
const MetadataSuffix = ".opus_metadata.json"

// Enqueuer publishes work items to the processing queue.
type Enqueuer interface {
	PublishWorkItem(ctx context.Context, item models.WorkItem) error
	Topic() string
}

// Result summarises one discovery run.
type Result struct {
	InputBucket string `json:"input_s3_bucket_name"`
	KeysLength  int    `json:"keys_length"`
	Queue       string `json:"queue"`
}

// Discoverer lists metadata artifacts and enqueues them.
type Discoverer struct {
	store   storage.Store
	queue   Enqueuer
	metrics *metrics.Metrics
}

// New creates a discoverer.
func New(store storage.Store, queue Enqueuer, m *metrics.Metrics) *Discoverer {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Discoverer{store: store, queue: queue, metrics: m}
}

// Run lists every key under prefix and enqueues the metadata artifacts in
// listing order. Items published before a failure stay enqueued.
func (d *Discoverer) Run(ctx context.Context, bucket, prefix string) (Result, error) {
	logger := logging.WithComponent("discovery")
	res := Result{InputBucket: bucket, Queue: d.queue.Topic()}

	if bucket == "" {
		return res, apperr.New(apperr.KindInput, "discovery.Run", "missing input bucket")
	}

	keys, err := d.store.List(ctx, bucket, prefix, 0)
	if err != nil {
		return res, apperr.Wrap(err, apperr.KindCollaborator, "discovery.Run", "list "+bucket+"/"+prefix)
	}

	for _, key := range keys {
		if !strings.HasSuffix(key, MetadataSuffix) {
			continue
		}
		if err := d.queue.PublishWorkItem(ctx, models.WorkItem{S3BucketName: bucket, S3ObjectKey: key}); err != nil {
			d.metrics.RecordDiscovered(res.KeysLength)
			return res, apperr.Wrap(err, apperr.KindCollaborator, "discovery.Run", "enqueue "+key)
		}
		res.KeysLength++
	}
	d.metrics.RecordDiscovered(res.KeysLength)

	logger.Info().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("listed", len(keys)).
		Int("enqueued", res.KeysLength).
		Str("queue", res.Queue).
		Msg("Discovery complete")
	return res, nil
}
