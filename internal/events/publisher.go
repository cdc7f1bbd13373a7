// Package events provides the Kafka work-item queue.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"call-summary-service/internal/models"
	"call-summary-service/internal/observability/metrics"
)

// Event types, used as the eventType header and metric label.
const (
	EventWorkItem   = "work_item"
	EventDeadLetter = "dead_letter"
)

// ErrDisabled is returned when a message is published with Kafka disabled.
// The payload is logged but nothing is enqueued.
var ErrDisabled = errors.New("kafka publisher disabled")

// DeadLetter wraps a work-item message that failed processing.
type DeadLetter struct {
	MessageID   string          `json:"messageId"`
	Body        json.RawMessage `json:"body"`
	Error       string          `json:"error"`
	FailureKind string          `json:"failureKind"`
	FailedAt    time.Time       `json:"failedAt"`
}

// Publisher publishes work items and dead letters to separate Kafka topics.
type Publisher struct {
	writerWork *kafka.Writer
	writerDLQ  *kafka.Writer
	principal  string
	topicWork  string
	topicDLQ   string
	enabled    bool
	metrics    *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	DLQTopic  string
	Principal string
	Enabled   bool
}

// New creates a Kafka publisher. With Kafka disabled it only logs.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topicWork: cfg.Topic,
			topicDLQ:  cfg.DLQTopic,
			enabled:   false,
			metrics:   m,
		}
	}

	transport := &kafka.Transport{
		Dial: newDialer().DialFunc,
	}

	writerWork := newWriter(cfg.Brokers, cfg.Topic, transport)

	var writerDLQ *kafka.Writer
	if cfg.DLQTopic != "" {
		writerDLQ = newWriter(cfg.Brokers, cfg.DLQTopic, transport)
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("dlqTopic", cfg.DLQTopic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerWork: writerWork,
		writerDLQ:  writerDLQ,
		principal:  cfg.Principal,
		topicWork:  cfg.Topic,
		topicDLQ:   cfg.DLQTopic,
		enabled:    true,
		metrics:    m,
	}
}

// Longer dial timeout for DNS resolution in Kubernetes.
func newDialer() *kafka.Dialer {
	return &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// Topic returns the work-item topic.
func (p *Publisher) Topic() string {
	return p.topicWork
}

// Enabled reports whether messages reach Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// HasDeadLetters reports whether failed messages can be parked.
func (p *Publisher) HasDeadLetters() bool {
	return p.enabled && p.writerDLQ != nil
}

// PublishWorkItem enqueues one metadata object, keyed by object key.
func (p *Publisher) PublishWorkItem(ctx context.Context, item models.WorkItem) error {
	return p.publish(ctx, p.writerWork, p.topicWork, EventWorkItem, item.S3ObjectKey, item)
}

// PublishDeadLetter parks a failed message on the dead-letter topic.
func (p *Publisher) PublishDeadLetter(ctx context.Context, key string, dl DeadLetter) error {
	return p.publish(ctx, p.writerDLQ, p.topicDLQ, EventDeadLetter, key, dl)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// Disabled: logged above, never reported as enqueued
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, ErrDisabled, time.Since(start).Seconds())
		return ErrDisabled
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerWork != nil {
		if e := p.writerWork.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing work-item writer")
			err = e
		}
	}
	if p.writerDLQ != nil {
		if e := p.writerDLQ.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing dead-letter writer")
			err = e
		}
	}
	return err
}
