// Package record assembles one summary record per metadata artifact.
package record

import (
	"context"
	"encoding/json"
	"time"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/schema"
	"call-summary-service/internal/service/enrich"
	"call-summary-service/internal/service/locator"
	"call-summary-service/internal/service/storage"
	"call-summary-service/internal/service/transcript"
)

// Enricher produces one response per prompt for a transcript.
type Enricher interface {
	Enrich(ctx context.Context, transcript string) (enrich.Result, error)
}

// Writer persists a finished record and returns its key.
type Writer interface {
	Write(ctx context.Context, r *models.OutputRecord) (string, error)
}

// Assembler drives LOADING_METADATA → LOCATING_SIBLINGS → (BUILDING_TRANSCRIPT →
// ENRICHING)? → WRITING → DONE for one work item. It holds only the
// process-wide collaborators; every call builds a fresh record.
type Assembler struct {
	store     storage.Store
	locator   *locator.Locator
	enricher  Enricher
	writer    Writer
	validator *schema.Validator
	metrics   *metrics.Metrics
}

// New creates an assembler.
func New(store storage.Store, loc *locator.Locator, enricher Enricher, writer Writer, m *metrics.Metrics) *Assembler {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Assembler{
		store:     store,
		locator:   loc,
		enricher:  enricher,
		writer:    writer,
		validator: schema.New(),
		metrics:   m,
	}
}

// Process builds and writes the record for the metadata artifact at
// bucket/key. It returns 1 once the record is written. On failure nothing is
// written and the error names the state that failed.
func (a *Assembler) Process(ctx context.Context, bucket, key string) (int, error) {
	lc := NewLifecycle(key)
	start := time.Now()

	rec, err := a.assemble(ctx, lc, bucket, key)
	if err != nil {
		at, _ := lc.Fail()
		a.metrics.RecordMessage(apperr.KindOf(err).String(), time.Since(start).Seconds())
		return 0, apperr.Wrap(err, apperr.KindUnknown, "record.Process", at.String())
	}

	a.metrics.RecordMessage("", time.Since(start).Seconds())
	logger := logging.FromContext(ctx)
	logger.Info().
		Str("recordingId", rec.RecordingID).
		Bool("transcript", rec.IsTranscriptAvailable).
		Dur("duration", time.Since(start)).
		Msg("Record processed")
	return 1, nil
}

func (a *Assembler) assemble(ctx context.Context, lc *Lifecycle, bucket, key string) (*models.OutputRecord, error) {
	logger := logging.FromContext(ctx)

	meta, err := a.loadMetadata(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	rec := &models.OutputRecord{
		S3BucketName:        bucket,
		S3ObjectKeyMetadata: key,
		ConversationID:      *meta.ConversationID,
		RecordingID:         *meta.RecordingID,
		StartTime:           *meta.StartTime,
		EndTime:             *meta.EndTime,
		DurationMs:          *meta.DurationMs,
		InitialDirection:    *meta.InitialDirection,
	}
	logger = logging.WithRecording(logger, rec.ConversationID, rec.RecordingID)
	ctx = logger.WithContext(ctx)

	if err := lc.Advance(StateLocatingSiblings); err != nil {
		return nil, err
	}
	sib, err := a.locator.Locate(ctx, bucket, key, rec.RecordingID)
	if err != nil {
		return nil, err
	}
	rec.IsRecordingAvailable, rec.S3ObjectKeyRecording = sib.HasRecording, sib.RecordingKey
	rec.IsCallMetadataAvailable, rec.S3ObjectKeyCallMetadata = sib.HasCallMetadata, sib.CallMetadataKey
	rec.IsTranscriptAvailable, rec.S3ObjectKeyTranscript = sib.HasTranscript, sib.TranscriptKey
	a.metrics.RecordSiblings(sib.HasRecording, sib.HasCallMetadata, sib.HasTranscript)

	logger.Debug().
		Str("prefix", sib.Prefix).
		Bool("recording", sib.HasRecording).
		Bool("callMetadata", sib.HasCallMetadata).
		Bool("transcript", sib.HasTranscript).
		Msg("Siblings located")

	if sib.HasTranscript {
		if err := a.addTranscript(ctx, lc, rec); err != nil {
			return nil, err
		}
	} else {
		logger.Info().Msg("No transcript sibling; writing record without enrichment")
	}

	if err := lc.Advance(StateWriting); err != nil {
		return nil, err
	}
	outKey, err := a.writer.Write(ctx, rec)
	if err != nil {
		return nil, err
	}
	a.metrics.RecordWrite()
	logger.Debug().Str("outputKey", outKey).Msg("Record written")

	return rec, lc.Advance(StateDone)
}

func (a *Assembler) loadMetadata(ctx context.Context, bucket, key string) (*models.MetadataArtifact, error) {
	body, err := a.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindCollaborator, "record.loadMetadata", "get metadata artifact")
	}

	var meta models.MetadataArtifact
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, apperr.Wrap(err, apperr.KindInput, "record.loadMetadata", "malformed metadata artifact")
	}
	if err := a.validator.Metadata(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (a *Assembler) addTranscript(ctx context.Context, lc *Lifecycle, rec *models.OutputRecord) error {
	if err := lc.Advance(StateBuildingTranscript); err != nil {
		return err
	}
	body, err := a.store.Get(ctx, rec.S3BucketName, rec.S3ObjectKeyTranscript)
	if err != nil {
		return apperr.Wrap(err, apperr.KindCollaborator, "record.addTranscript", "get transcript artifact")
	}
	doc, err := transcript.Decode(body)
	if err != nil {
		return err
	}
	text := transcript.Flatten(doc)
	rec.CommunicationID = doc.CommunicationID
	rec.MediaType = doc.MediaType
	rec.Transcript = &text
	a.metrics.RecordTranscript(len(text))

	if err := lc.Advance(StateEnriching); err != nil {
		return err
	}
	res, err := a.enricher.Enrich(ctx, text)
	if err != nil {
		return err
	}
	for _, r := range res {
		if err := rec.SetEnrichment(r.Key, r.Text); err != nil {
			return apperr.Wrap(err, apperr.KindConfig, "record.addTranscript", "merge enrichment")
		}
	}
	return nil
}
