// Package logging provides structured logging with zerolog.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, etc.
	Service    string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
		Service:    "call-summary-service",
	}
}

// Init initializes the global zerolog logger.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	}

	ctx := zerolog.New(output).With().Timestamp().Caller()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithMessage returns a logger with work-item context.
func WithMessage(runId, bucket, key string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Str("bucket", bucket).
		Str("key", key).
		Logger()
}

// WithRecording returns a logger with recording context.
func WithRecording(parent zerolog.Logger, conversationId, recordingId string) zerolog.Logger {
	return parent.With().
		Str("conversationId", conversationId).
		Str("recordingId", recordingId).
		Logger()
}

// FromContext returns the logger attached to ctx, or the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return Logger()
}
