// Package enrich runs the fixed prompt set against a transcript.
package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/service/llm"
)

// Troubleshooting links logged on model access denial.
var accessDeniedHints = []string{
	"https://docs.aws.amazon.com/IAM/latest/UserGuide/troubleshoot_access-denied.html",
	"https://docs.aws.amazon.com/bedrock/latest/userguide/security-iam.html",
}

// Response is the raw completion for one prompt.
type Response struct {
	Key  string
	Text string
}

// Result holds one response per prompt, in prompt order.
type Result []Response

// Get returns the response stored under key.
func (r Result) Get(key string) (string, bool) {
	for _, resp := range r {
		if resp.Key == key {
			return resp.Text, true
		}
	}
	return "", false
}

// Engine invokes the model once per prompt.
type Engine struct {
	invoker     llm.Invoker
	prompts     []Prompt
	cfg         llm.GenerationConfig
	concurrency int
	metrics     *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency allows up to n prompts in flight. Results stay in prompt order.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMaxTokens overrides the completion length.
func WithMaxTokens(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cfg.MaxTokens = n
		}
	}
}

// WithPrompts replaces the prompt set.
func WithPrompts(p []Prompt) Option {
	return func(e *Engine) {
		e.prompts = p
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates a sequential engine using Prompts and llm.DeterministicConfig.
func New(invoker llm.Invoker, opts ...Option) *Engine {
	e := &Engine{
		invoker:     invoker,
		prompts:     Prompts,
		cfg:         llm.DeterministicConfig(),
		concurrency: 1,
		metrics:     metrics.DefaultMetrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render substitutes the transcript verbatim into the template.
func Render(template, transcript string) string {
	return strings.ReplaceAll(template, Placeholder, transcript)
}

// Enrich invokes every prompt and returns the raw completions. The first
// failure aborts the run; no retries are made.
func (e *Engine) Enrich(ctx context.Context, transcript string) (Result, error) {
	result := make(Result, len(e.prompts))

	if e.concurrency <= 1 {
		for i, p := range e.prompts {
			text, err := e.invoke(ctx, p, transcript)
			if err != nil {
				return nil, err
			}
			result[i] = Response{Key: p.Key, Text: text}
		}
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range e.prompts {
		g.Go(func() error {
			text, err := e.invoke(gctx, p, transcript)
			if err != nil {
				return err
			}
			result[i] = Response{Key: p.Key, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) invoke(ctx context.Context, p Prompt, transcript string) (string, error) {
	start := time.Now()
	text, err := e.invoker.Invoke(ctx, Render(p.Template, transcript), e.cfg)
	latency := time.Since(start).Seconds()

	// Carries the message and recording fields set by the caller.
	logger := logging.FromContext(ctx).With().Str("component", "enrich").Logger()

	if err == nil {
		e.metrics.RecordPrompt(p.Key, "", latency)
		logger.Debug().
			Str("prompt", p.Key).
			Int("responseChars", len(text)).
			Float64("latencySeconds", latency).
			Msg("Prompt completed")
		return text, nil
	}

	if errors.Is(err, llm.ErrAccessDenied) {
		e.metrics.RecordPrompt(p.Key, "access_denied", latency)
		logger.Error().
			Err(err).
			Str("prompt", p.Key).
			Strs("troubleshooting", accessDeniedHints).
			Msg("Model access denied; check the model is enabled and the role may invoke it")
		return "", apperr.Wrap(err, apperr.KindAccessDenied, "enrich.Enrich", "invoke "+p.Key)
	}

	e.metrics.RecordPrompt(p.Key, "provider", latency)
	return "", apperr.Wrap(err, apperr.KindCollaborator, "enrich.Enrich", "invoke "+p.Key)
}
