package models

import (
	"encoding/json"
	"fmt"
)

// Enrichment keys, one per prompt template.
const (
	KeyIntent          = "llm_intent"
	KeySummary         = "llm_summary"
	KeySentiment       = "llm_sentiment"
	KeyIsToCancel      = "llm_is_tocancel"
	KeyIsNewService    = "llm_is_newservice"
	KeyIsDiscountOffer = "llm_is_discountoffered"
)

// OutputRecord is the summary document persisted once per processed message.
// Transcript and llm_* fields are set only when the transcript sibling exists.
type OutputRecord struct {
	S3BucketName        string      `json:"s3_bucket_name"`
	S3ObjectKeyMetadata string      `json:"s3_object_key_opus_metadata"`
	ConversationID      string      `json:"conversation_id"`
	RecordingID         string      `json:"recording_id"`
	StartTime           string      `json:"start_time"`
	EndTime             string      `json:"end_time"`
	DurationMs          json.Number `json:"duration_ms"`
	InitialDirection    string      `json:"initial_direction"`

	S3ObjectKeyRecording    string `json:"s3_object_key_opus_recording,omitempty"`
	S3ObjectKeyCallMetadata string `json:"s3_object_key_opus_call_metadata,omitempty"`
	S3ObjectKeyTranscript   string `json:"s3_object_key_transcript,omitempty"`

	IsRecordingAvailable    bool `json:"is_opus_recording_available"`
	IsCallMetadataAvailable bool `json:"is_opus_call_metadata_available"`
	IsTranscriptAvailable   bool `json:"is_transcript_available"`

	CommunicationID string  `json:"communication_id,omitempty"`
	MediaType       string  `json:"media_type,omitempty"`
	Transcript      *string `json:"transcript,omitempty"`

	LLMIntent          *string `json:"llm_intent,omitempty"`
	LLMSummary         *string `json:"llm_summary,omitempty"`
	LLMSentiment       *string `json:"llm_sentiment,omitempty"`
	LLMIsToCancel      *string `json:"llm_is_tocancel,omitempty"`
	LLMIsNewService    *string `json:"llm_is_newservice,omitempty"`
	LLMIsDiscountOffer *string `json:"llm_is_discountoffered,omitempty"`
}

// SetEnrichment stores a model response under its prompt key.
func (r *OutputRecord) SetEnrichment(key, text string) error {
	field := r.enrichmentField(key)
	if field == nil {
		return fmt.Errorf("unknown enrichment key %q", key)
	}
	*field = &text
	return nil
}

// Enrichment returns the response stored under key, if any.
func (r *OutputRecord) Enrichment(key string) (string, bool) {
	field := r.enrichmentField(key)
	if field == nil || *field == nil {
		return "", false
	}
	return **field, true
}

func (r *OutputRecord) enrichmentField(key string) **string {
	switch key {
	case KeyIntent:
		return &r.LLMIntent
	case KeySummary:
		return &r.LLMSummary
	case KeySentiment:
		return &r.LLMSentiment
	case KeyIsToCancel:
		return &r.LLMIsToCancel
	case KeyIsNewService:
		return &r.LLMIsNewService
	case KeyIsDiscountOffer:
		return &r.LLMIsDiscountOffer
	default:
		return nil
	}
}
