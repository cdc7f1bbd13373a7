// Package models defines the artifacts read from and written to storage.
package models

// TranscriptDocument is a Genesys `.transcript.json` artifact.
type TranscriptDocument struct {
	CommunicationID string              `json:"communicationId"`
	MediaType       string              `json:"mediaType"`
	Transcripts     []TranscriptSegment `json:"transcripts"`
}

// TranscriptSegment is one ordered block of phrases.
type TranscriptSegment struct {
	Phrases []Phrase `json:"phrases"`
}

// Phrase carries the display text of a single recognised utterance.
type Phrase struct {
	DecoratedText      string `json:"decoratedText"`
	ParticipantPurpose string `json:"participantPurpose,omitempty"`
}
