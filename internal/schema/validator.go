// Package schema checks the required fields of input artifacts and messages.
package schema

import (
	"strings"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Metadata reports every required metadata field that is absent or blank.
func (v *Validator) Metadata(m *models.MetadataArtifact) error {
	var missing []string
	check := func(name string, s *string) {
		if s == nil || strings.TrimSpace(*s) == "" {
			missing = append(missing, name)
		}
	}
	check("conversationId", m.ConversationID)
	check("recordingId", m.RecordingID)
	check("startTime", m.StartTime)
	check("endTime", m.EndTime)
	if m.DurationMs == nil || *m.DurationMs == "" {
		missing = append(missing, "durationMs")
	}
	check("initialDirection", m.InitialDirection)

	if len(missing) > 0 {
		return apperr.Newf(apperr.KindInput, "schema.Metadata", "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WorkItem requires both the bucket name and the object key.
func (v *Validator) WorkItem(w *models.WorkItem) error {
	var missing []string
	if w.S3BucketName == "" {
		missing = append(missing, "s3_bucket_name")
	}
	if w.S3ObjectKey == "" {
		missing = append(missing, "s3_object_key")
	}
	if len(missing) > 0 {
		return apperr.Newf(apperr.KindInput, "schema.WorkItem", "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
