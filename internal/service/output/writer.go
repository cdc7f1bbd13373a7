// Package output persists summary records under date-partitioned keys.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/service/storage"
)

// ContentType of a written record.
const ContentType = "application/json"

// Accepted start-time layouts. The date is taken in the timestamp's own offset.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseStartTime parses an ISO-8601 timestamp.
func ParseStartTime(s string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Newf(apperr.KindInput, "output.ParseStartTime", "unparsable start time %q", s)
}

// PartitionPrefix returns the day partition holding records started on day.
func PartitionPrefix(day time.Time) string {
	return fmt.Sprintf("summary/year=%04d/month=%02d/day=%02d/", day.Year(), int(day.Month()), day.Day())
}

// Key derives summary/year=YYYY/month=MM/day=DD/recording-<id>.summary.json.
func Key(r *models.OutputRecord) (string, error) {
	t, err := ParseStartTime(r.StartTime)
	if err != nil {
		return "", err
	}
	return PartitionPrefix(t) + "recording-" + r.RecordingID + ".summary.json", nil
}

// Writer writes records to the output bucket.
type Writer struct {
	store  storage.Store
	bucket string
}

// New creates a writer. An empty bucket is a configuration error.
func New(store storage.Store, bucket string) (*Writer, error) {
	if bucket == "" {
		return nil, apperr.New(apperr.KindConfig, "output.New", "output bucket is not configured")
	}
	return &Writer{store: store, bucket: bucket}, nil
}

// Bucket returns the output bucket.
func (w *Writer) Bucket() string {
	return w.bucket
}

// Write serializes r and puts it at its partitioned key, overwriting any
// previous object. It returns the key written.
func (w *Writer) Write(ctx context.Context, r *models.OutputRecord) (string, error) {
	key, err := Key(r)
	if err != nil {
		return "", err
	}

	body, err := encode(r)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindInput, "output.Write", "encode record")
	}

	if err := w.store.Put(ctx, w.bucket, key, body, ContentType); err != nil {
		return "", apperr.Wrap(err, apperr.KindCollaborator, "output.Write", "put "+key)
	}
	return key, nil
}

// encode keeps transcript and completion text byte-faithful: no HTML
// escaping and no trailing newline.
func encode(r *models.OutputRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
