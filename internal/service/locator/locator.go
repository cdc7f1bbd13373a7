// Package locator finds the artifacts that share a metadata artifact's key prefix.
package locator

import (
	"context"
	"strings"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/service/storage"
)

// Sibling artifact suffixes.
const (
	SuffixRecording    = ".opus"
	SuffixCallMetadata = ".opus_call_metadata.json"
	SuffixTranscript   = ".transcript.json"
)

// DefaultMaxKeys is the listing window under the prefix.
const DefaultMaxKeys = 5

// Siblings is the located artifact set. Keys are empty when the flag is false.
type Siblings struct {
	Prefix string

	RecordingKey    string
	CallMetadataKey string
	TranscriptKey   string

	HasRecording    bool
	HasCallMetadata bool
	HasTranscript   bool
}

// Locator lists and classifies sibling artifacts.
type Locator struct {
	store   storage.Store
	maxKeys int
}

// New creates a locator listing at most maxKeys keys; maxKeys <= 0 uses DefaultMaxKeys.
func New(store storage.Store, maxKeys int) *Locator {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &Locator{store: store, maxKeys: maxKeys}
}

// Prefix returns metadataKey up to the first occurrence of recordingId.
// It fails with a config error when recordingId is empty or absent from the key.
func Prefix(metadataKey, recordingId string) (string, error) {
	if recordingId == "" {
		return "", apperr.New(apperr.KindConfig, "locator.Prefix", "empty recording id")
	}
	i := strings.Index(metadataKey, recordingId)
	if i < 0 {
		return "", apperr.Newf(apperr.KindConfig, "locator.Prefix",
			"recording id %q does not occur in key %q", recordingId, metadataKey)
	}
	return metadataKey[:i], nil
}

// Locate lists the window under the derived prefix and classifies each key
// by suffix. Keys matching no suffix are ignored. When a kind occurs more than
// once in the window, the last key in listing order wins.
func (l *Locator) Locate(ctx context.Context, bucket, metadataKey, recordingId string) (Siblings, error) {
	prefix, err := Prefix(metadataKey, recordingId)
	if err != nil {
		return Siblings{}, err
	}

	keys, err := l.store.List(ctx, bucket, prefix, l.maxKeys)
	if err != nil {
		return Siblings{}, apperr.Wrap(err, apperr.KindCollaborator, "locator.Locate", "list siblings")
	}

	s := Siblings{Prefix: prefix}
	for _, k := range keys {
		switch {
		case strings.HasSuffix(k, SuffixRecording):
			s.RecordingKey, s.HasRecording = k, true
		case strings.HasSuffix(k, SuffixCallMetadata):
			s.CallMetadataKey, s.HasCallMetadata = k, true
		case strings.HasSuffix(k, SuffixTranscript):
			s.TranscriptKey, s.HasTranscript = k, true
		}
	}
	return s, nil
}
