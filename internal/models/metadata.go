package models

import "encoding/json"

// MetadataArtifact is a Genesys `.opus_metadata.json` descriptor.
// Fields are pointers so that absent keys can be told apart from empty values.
type MetadataArtifact struct {
	ConversationID   *string      `json:"conversationId"`
	RecordingID      *string      `json:"recordingId"`
	StartTime        *string      `json:"startTime"`
	EndTime          *string      `json:"endTime"`
	DurationMs       *json.Number `json:"durationMs"`
	InitialDirection *string      `json:"initialDirection"`
}

// WorkItem is the queue message body produced by discovery.
type WorkItem struct {
	S3BucketName string `json:"s3_bucket_name"`
	S3ObjectKey  string `json:"s3_object_key"`
}
