// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_summary"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Message metrics
	MessagesTotal    prometheus.Counter
	MessagesFailed   *prometheus.CounterVec
	MessageDuration  prometheus.Histogram
	RecordsProcessed prometheus.Counter

	// Record metrics
	RecordsWritten   prometheus.Counter
	SiblingsFound    *prometheus.CounterVec
	TranscriptsTotal *prometheus.CounterVec
	TranscriptChars  prometheus.Histogram

	// Enrichment metrics
	PromptLatency *prometheus.HistogramVec
	PromptErrors  *prometheus.CounterVec

	// Storage metrics
	StorageLatency *prometheus.HistogramVec
	StorageErrors  *prometheus.CounterVec

	// Queue metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
	KafkaConsumed       *prometheus.CounterVec

	// Discovery metrics
	DiscoveryKeys prometheus.Counter
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Total number of work-item messages received",
		}),
		MessagesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_failed_total",
			Help:      "Total number of work-item messages that failed",
		}, []string{"failure_kind"}),
		MessageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_duration_seconds",
			Help:      "Time to assemble and write one record",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		RecordsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Total number of records processed successfully",
		}),

		RecordsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Total number of summary records written to storage",
		}),
		SiblingsFound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "siblings_found_total",
			Help:      "Sibling artifacts found per kind",
		}, []string{"kind"}),
		TranscriptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_total",
			Help:      "Records by transcript availability",
		}, []string{"availability"}),
		TranscriptChars: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcript_chars",
			Help:      "Length of flattened transcripts in characters",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),

		PromptLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prompt_latency_seconds",
			Help:      "Language-model invocation latency per prompt",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"prompt"}),
		PromptErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_errors_total",
			Help:      "Language-model invocation errors per prompt",
		}, []string{"prompt", "error_type"}),

		StorageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_latency_seconds",
			Help:      "Object storage operation latency",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"op"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Object storage operation errors",
		}, []string{"op", "error_type"}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
		KafkaConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consumed_total",
			Help:      "Total number of Kafka messages consumed",
		}, []string{"topic", "outcome"}),

		DiscoveryKeys: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_keys_total",
			Help:      "Metadata keys discovered and enqueued",
		}),
	}
}

// RecordMessage records the outcome of one work-item message.
func (m *Metrics) RecordMessage(failureKind string, durationSeconds float64) {
	m.MessagesTotal.Inc()
	m.MessageDuration.Observe(durationSeconds)
	if failureKind != "" {
		m.MessagesFailed.WithLabelValues(failureKind).Inc()
		return
	}
	m.RecordsProcessed.Inc()
}

// RecordSiblings records which sibling artifacts were found.
func (m *Metrics) RecordSiblings(recording, callMetadata, transcript bool) {
	if recording {
		m.SiblingsFound.WithLabelValues("recording").Inc()
	}
	if callMetadata {
		m.SiblingsFound.WithLabelValues("call_metadata").Inc()
	}
	if transcript {
		m.SiblingsFound.WithLabelValues("transcript").Inc()
		m.TranscriptsTotal.WithLabelValues("available").Inc()
	} else {
		m.TranscriptsTotal.WithLabelValues("missing").Inc()
	}
}

// RecordTranscript records the size of a flattened transcript.
func (m *Metrics) RecordTranscript(chars int) {
	m.TranscriptChars.Observe(float64(chars))
}

// RecordWrite records a summary record written.
func (m *Metrics) RecordWrite() {
	m.RecordsWritten.Inc()
}

// RecordPrompt records one language-model invocation.
func (m *Metrics) RecordPrompt(prompt, errorType string, latencySeconds float64) {
	m.PromptLatency.WithLabelValues(prompt).Observe(latencySeconds)
	if errorType != "" {
		m.PromptErrors.WithLabelValues(prompt, errorType).Inc()
	}
}

// RecordStorage records one object storage operation.
func (m *Metrics) RecordStorage(op, errorType string, latencySeconds float64) {
	m.StorageLatency.WithLabelValues(op).Observe(latencySeconds)
	if errorType != "" {
		m.StorageErrors.WithLabelValues(op, errorType).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordKafkaConsumed records a consumed Kafka message.
func (m *Metrics) RecordKafkaConsumed(topic, outcome string) {
	m.KafkaConsumed.WithLabelValues(topic, outcome).Inc()
}

// RecordDiscovered records metadata keys enqueued by discovery.
func (m *Metrics) RecordDiscovered(n int) {
	m.DiscoveryKeys.Add(float64(n))
}
