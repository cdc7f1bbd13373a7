// Package dispatch feeds queue message batches into the record assembler.
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/schema"
)

// Processor assembles and writes one record.
type Processor interface {
	Process(ctx context.Context, bucket, key string) (int, error)
}

// Message is one queue message. ID is the transport's message id.
type Message struct {
	ID   string
	Body []byte
}

// Failure is a message that could not be processed.
type Failure struct {
	MessageID string
	Err       error
}

// Result tallies a batch.
type Result struct {
	RecordsProcessed int       `json:"records_processed"`
	Failures         []Failure `json:"-"`
}

// Handler dispatches batches.
type Handler struct {
	processor Processor
	validator *schema.Validator
}

// New creates a handler.
func New(p Processor) *Handler {
	return &Handler{processor: p, validator: schema.New()}
}

// HandleBatch processes messages in order and stops at the first failure.
// The returned result counts the records processed before it.
func (h *Handler) HandleBatch(ctx context.Context, msgs []Message) (Result, error) {
	var res Result
	for _, m := range msgs {
		n, err := h.handle(ctx, m)
		if err != nil {
			res.Failures = append(res.Failures, Failure{MessageID: m.ID, Err: err})
			return res, err
		}
		res.RecordsProcessed += n
	}
	return res, nil
}

// HandleBatchIsolated processes every message and reports failures per
// message instead of aborting the batch.
func (h *Handler) HandleBatchIsolated(ctx context.Context, msgs []Message) Result {
	var res Result
	for _, m := range msgs {
		n, err := h.handle(ctx, m)
		if err != nil {
			res.Failures = append(res.Failures, Failure{MessageID: m.ID, Err: err})
			continue
		}
		res.RecordsProcessed += n
	}
	return res
}

func (h *Handler) handle(ctx context.Context, m Message) (int, error) {
	runId := uuid.NewString()

	var item models.WorkItem
	if err := json.Unmarshal(m.Body, &item); err != nil {
		err = apperr.Wrap(err, apperr.KindInput, "dispatch.handle", "malformed message body")
		rl := logging.WithMessage(runId, "", "")
		rl.Error().Err(err).Str("messageId", m.ID).Msg("Message rejected")
		return 0, err
	}

	logger := logging.WithMessage(runId, item.S3BucketName, item.S3ObjectKey)
	if err := h.validator.WorkItem(&item); err != nil {
		logger.Error().Err(err).Str("messageId", m.ID).Msg("Message rejected")
		return 0, err
	}

	logger.Info().Str("messageId", m.ID).Msg("Processing work item")
	n, err := h.processor.Process(logger.WithContext(ctx), item.S3BucketName, item.S3ObjectKey)
	if err != nil {
		logger.Error().
			Err(err).
			Str("messageId", m.ID).
			Str("failureKind", apperr.KindOf(err).String()).
			Msg("Work item failed")
		return 0, err
	}
	return n, nil
}
