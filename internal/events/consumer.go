package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/service/dispatch"
)

// BatchHandler processes a batch, isolating per-message failures.
type BatchHandler interface {
	HandleBatchIsolated(ctx context.Context, msgs []dispatch.Message) dispatch.Result
}

// DeadLetterPublisher parks failed messages.
type DeadLetterPublisher interface {
	HasDeadLetters() bool
	PublishDeadLetter(ctx context.Context, key string, dl DeadLetter) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers   []string
	Topic     string
	GroupID   string
	BatchSize int
	BatchWait time.Duration
}

// Consumer reads work items from a consumer group and feeds them to the
// dispatcher one batch at a time.
type Consumer struct {
	reader    messageReader
	handler   BatchHandler
	dlq       DeadLetterPublisher
	topic     string
	batchSize int
	batchWait time.Duration
	metrics   *metrics.Metrics
}

// ErrUnparked is returned when a failed message cannot be parked; its offset
// is left uncommitted so the group redelivers it after restart.
var ErrUnparked = errors.New("failed message left uncommitted")

// NewConsumer creates a consumer group reader.
func NewConsumer(cfg ConsumerConfig, handler BatchHandler, dlq DeadLetterPublisher) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		Dialer:   newDialer(),
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, cfg, handler, dlq)
}

func newConsumer(reader messageReader, cfg ConsumerConfig, handler BatchHandler, dlq DeadLetterPublisher) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchWait <= 0 {
		cfg.BatchWait = 500 * time.Millisecond
	}
	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("groupId", cfg.GroupID).
		Int("batchSize", cfg.BatchSize).
		Msg("Kafka consumer initialized")
	return &Consumer{
		reader:    reader,
		handler:   handler,
		dlq:       dlq,
		topic:     cfg.Topic,
		batchSize: cfg.BatchSize,
		batchWait: cfg.BatchWait,
		metrics:   metrics.DefaultMetrics,
	}
}

// Run consumes until ctx is cancelled or a failed message cannot be parked.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		batch, err := c.fetchBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.processBatch(ctx, batch); err != nil {
			return err
		}
	}
}

// fetchBatch blocks for the first message, then collects more for up to batchWait.
func (c *Consumer) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	batch := []kafka.Message{first}

	waitCtx, cancel := context.WithTimeout(ctx, c.batchWait)
	defer cancel()
	for len(batch) < c.batchSize {
		m, err := c.reader.FetchMessage(waitCtx)
		if err != nil {
			break
		}
		batch = append(batch, m)
	}
	return batch, nil
}

func (c *Consumer) processBatch(ctx context.Context, batch []kafka.Message) error {
	msgs := make([]dispatch.Message, len(batch))
	for i, m := range batch {
		msgs[i] = dispatch.Message{ID: messageID(m), Body: m.Value}
	}

	res := c.handler.HandleBatchIsolated(ctx, msgs)

	failed := make(map[string]error, len(res.Failures))
	for _, f := range res.Failures {
		failed[f.MessageID] = f.Err
	}

	// Commit up to the first failure that could not be parked.
	commit := make([]kafka.Message, 0, len(batch))
	var stopErr error
	for i, m := range batch {
		err, isFailed := failed[msgs[i].ID]
		if !isFailed {
			c.metrics.RecordKafkaConsumed(c.topic, "processed")
			commit = append(commit, m)
			continue
		}
		if perr := c.park(ctx, m, msgs[i].ID, err); perr != nil {
			c.metrics.RecordKafkaConsumed(c.topic, "uncommitted")
			stopErr = perr
			break
		}
		c.metrics.RecordKafkaConsumed(c.topic, "dead_lettered")
		commit = append(commit, m)
	}

	if len(commit) > 0 {
		if err := c.reader.CommitMessages(ctx, commit...); err != nil {
			return err
		}
	}
	return stopErr
}

func (c *Consumer) park(ctx context.Context, m kafka.Message, id string, cause error) error {
	if c.dlq == nil || !c.dlq.HasDeadLetters() {
		log.Error().Err(cause).Str("messageId", id).Msg("No dead-letter topic; stopping before the failed offset")
		return errors.Join(ErrUnparked, cause)
	}

	body := json.RawMessage(m.Value)
	if !json.Valid(m.Value) {
		quoted, _ := json.Marshal(string(m.Value))
		body = quoted
	}
	dl := DeadLetter{
		MessageID:   id,
		Body:        body,
		Error:       cause.Error(),
		FailureKind: apperr.KindOf(cause).String(),
		FailedAt:    time.Now().UTC(),
	}
	if err := c.dlq.PublishDeadLetter(ctx, string(m.Key), dl); err != nil {
		return errors.Join(ErrUnparked, err)
	}
	return nil
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func messageID(m kafka.Message) string {
	return fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset)
}
