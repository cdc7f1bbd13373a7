// Package llm defines the interface for language-model providers.
package llm

import (
	"context"
	"errors"
)

// ErrAccessDenied is returned by an Invoker when the provider rejects the
// call for lack of permission (model not enabled, missing IAM policy).
var ErrAccessDenied = errors.New("model access denied")

// StopEndOfTurn marks the end of the assistant turn in Human/Assistant prompts.
const StopEndOfTurn = "\n\nHuman:"

// GenerationConfig controls a single completion.
type GenerationConfig struct {
	Temperature   float64
	TopP          float64
	MaxTokens     int64
	StopSequences []string
}

// DeterministicConfig returns the fixed configuration used for enrichment:
// greedy sampling, 4096 output tokens, stop at end of turn.
func DeterministicConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:   0,
		TopP:          1,
		MaxTokens:     4096,
		StopSequences: []string{StopEndOfTurn},
	}
}

// Invoker sends one rendered prompt to a model and returns the raw completion.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}
