// Package transcript builds plain-text transcripts from phrase documents.
package transcript

import (
	"encoding/json"
	"strings"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
)

// Flatten joins every phrase's display text, segment order then phrase order,
// with single spaces. Text is used as-is.
func Flatten(doc models.TranscriptDocument) string {
	var texts []string
	for _, seg := range doc.Transcripts {
		for _, p := range seg.Phrases {
			texts = append(texts, p.DecoratedText)
		}
	}
	return strings.Join(texts, " ")
}

// Decode parses a transcript artifact.
func Decode(body []byte) (models.TranscriptDocument, error) {
	var doc models.TranscriptDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return doc, apperr.Wrap(err, apperr.KindInput, "transcript.Decode", "malformed transcript artifact")
	}
	return doc, nil
}
