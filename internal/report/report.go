// Package report exports one day of summary records as a spreadsheet.
package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/service/output"
	"call-summary-service/internal/service/storage"
)

// SheetName is the worksheet holding the records.
const SheetName = "summary"

var enrichmentKeys = []string{
	models.KeyIntent,
	models.KeySummary,
	models.KeySentiment,
	models.KeyIsToCancel,
	models.KeyIsNewService,
	models.KeyIsDiscountOffer,
}

// Header is the first row of the sheet.
var Header = append([]string{
	"conversation_id",
	"recording_id",
	"start_time",
	"end_time",
	"duration_ms",
	"initial_direction",
	"is_opus_recording_available",
	"is_opus_call_metadata_available",
	"is_transcript_available",
	"s3_object_key_opus_metadata",
}, enrichmentKeys...)

// Exporter reads records from the output bucket.
type Exporter struct {
	store  storage.Store
	bucket string
}

// New creates an exporter for the output bucket.
func New(store storage.Store, bucket string) (*Exporter, error) {
	if bucket == "" {
		return nil, apperr.New(apperr.KindConfig, "report.New", "output bucket is not configured")
	}
	return &Exporter{store: store, bucket: bucket}, nil
}

// Export writes the records of day's partition to w as XLSX and returns the
// number of rows written. Undecodable objects are skipped.
func (e *Exporter) Export(ctx context.Context, day time.Time, w io.Writer) (int, error) {
	logger := logging.WithComponent("report")
	prefix := output.PartitionPrefix(day)

	keys, err := e.store.List(ctx, e.bucket, prefix, 0)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.KindCollaborator, "report.Export", "list "+prefix)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, err
	}
	if err := setRow(f, 1, toCells(Header)); err != nil {
		return 0, err
	}

	rows := 0
	for _, key := range keys {
		body, err := e.store.Get(ctx, e.bucket, key)
		if err != nil {
			return rows, apperr.Wrap(err, apperr.KindCollaborator, "report.Export", "get "+key)
		}
		var rec models.OutputRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Skipping undecodable record")
			continue
		}
		if err := setRow(f, rows+2, recordRow(&rec)); err != nil {
			return rows, err
		}
		rows++
	}

	if err := f.Write(w); err != nil {
		return rows, apperr.Wrap(err, apperr.KindCollaborator, "report.Export", "write workbook")
	}
	logger.Info().Str("prefix", prefix).Int("rows", rows).Msg("Report exported")
	return rows, nil
}

func recordRow(r *models.OutputRecord) []any {
	row := []any{
		r.ConversationID,
		r.RecordingID,
		r.StartTime,
		r.EndTime,
		r.DurationMs.String(),
		r.InitialDirection,
		r.IsRecordingAvailable,
		r.IsCallMetadataAvailable,
		r.IsTranscriptAvailable,
		r.S3ObjectKeyMetadata,
	}
	for _, k := range enrichmentKeys {
		text, _ := r.Enrichment(k)
		row = append(row, text)
	}
	return row
}

func toCells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func setRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}
