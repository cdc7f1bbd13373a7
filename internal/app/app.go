package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/config"
	"call-summary-service/internal/events"
	"call-summary-service/internal/observability"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/observability/metrics"
	"call-summary-service/internal/report"
	"call-summary-service/internal/service/discovery"
	"call-summary-service/internal/service/dispatch"
	"call-summary-service/internal/service/enrich"
	"call-summary-service/internal/service/llm"
	"call-summary-service/internal/service/llm/anthropic"
	"call-summary-service/internal/service/llm/mock"
	"call-summary-service/internal/service/locator"
	"call-summary-service/internal/service/output"
	"call-summary-service/internal/service/record"
	"call-summary-service/internal/service/storage"
	"call-summary-service/internal/service/storage/memory"
	s3store "call-summary-service/internal/service/storage/s3"
)

// Application holds process-wide collaborators. They are built once per
// process and shared read-only by every invocation.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Metrics     *metrics.Metrics

	Store     storage.Store
	Publisher *events.Publisher

	invoker    llm.Invoker
	dispatcher *dispatch.Handler
}

// New constructs a new Application from the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:     cfg,
		Metrics: metrics.DefaultMetrics,
		Logger:  logging.WithComponent("application"),
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.Store = observability.InstrumentStore(store, a.Metrics)

	a.Publisher = events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		DLQTopic:  cfg.Kafka.DLQTopic,
		Principal: cfg.Kafka.Principal,
	})

	a.Logger.Info().
		Str("storageProvider", cfg.Storage.Provider).
		Str("llmProvider", cfg.LLM.Provider).
		Bool("kafkaEnabled", cfg.Kafka.Enabled).
		Msg("Call summary application created")
	return a, nil
}

// WithInvoker overrides the language-model collaborator. Must be called
// before Dispatcher.
func (a *Application) WithInvoker(inv llm.Invoker) *Application {
	a.invoker = inv
	return a
}

// Dispatcher returns the dispatch handler, building the processing pipeline
// on first use. A missing output bucket is a configuration error.
func (a *Application) Dispatcher(ctx context.Context) (*dispatch.Handler, error) {
	if a.dispatcher != nil {
		return a.dispatcher, nil
	}

	writer, err := output.New(a.Store, a.Cfg.Storage.OutputBucket)
	if err != nil {
		return nil, err
	}

	if a.invoker == nil {
		inv, err := newInvoker(ctx, a.Cfg.LLM)
		if err != nil {
			return nil, err
		}
		a.invoker = inv
	}

	engine := enrich.New(a.invoker,
		enrich.WithConcurrency(a.Cfg.LLM.Concurrency),
		enrich.WithMaxTokens(a.Cfg.LLM.MaxTokens),
		enrich.WithMetrics(a.Metrics),
	)
	assembler := record.New(a.Store, locator.New(a.Store, a.Cfg.Storage.ListMaxKeys), engine, writer, a.Metrics)
	a.Logger.Info().
		Str("outputBucket", writer.Bucket()).
		Int("siblingMaxKeys", a.Cfg.Storage.ListMaxKeys).
		Int("llmConcurrency", a.Cfg.LLM.Concurrency).
		Msg("Processing pipeline built")

	a.dispatcher = dispatch.New(assembler)
	return a.dispatcher, nil
}

// Discoverer returns a discovery stage feeding the work-item topic. Work
// items have no log-only fallback, so Kafka must be enabled.
func (a *Application) Discoverer() (*discovery.Discoverer, error) {
	if !a.Publisher.Enabled() {
		return nil, apperr.New(apperr.KindConfig, "app.Discoverer", "Kafka is not enabled; discovered work items would be dropped")
	}
	return discovery.New(a.Store, a.Publisher, a.Metrics), nil
}

// Reporter returns an exporter over the output bucket.
func (a *Application) Reporter() (*report.Exporter, error) {
	return report.New(a.Store, a.Cfg.Storage.OutputBucket)
}

// Consumer returns a Kafka consumer feeding the dispatcher.
func (a *Application) Consumer(ctx context.Context) (*events.Consumer, error) {
	if !a.Cfg.Kafka.Enabled || len(a.Cfg.Kafka.Brokers) == 0 {
		return nil, apperr.New(apperr.KindConfig, "app.Consumer", "Kafka is not enabled")
	}
	d, err := a.Dispatcher(ctx)
	if err != nil {
		return nil, err
	}
	return events.NewConsumer(events.ConsumerConfig{
		Brokers:   a.Cfg.Kafka.Brokers,
		Topic:     a.Cfg.Kafka.Topic,
		GroupID:   a.Cfg.Kafka.GroupID,
		BatchSize: a.Cfg.Kafka.BatchSize,
	}, d, a.Publisher), nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.UsePathStyle,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, apperr.Newf(apperr.KindConfig, "app.newStore", "unknown storage provider %q", cfg.Provider)
	}
}

func newInvoker(ctx context.Context, cfg config.LLMConfig) (llm.Invoker, error) {
	switch cfg.Provider {
	case "bedrock":
		return anthropic.NewInvoker(
			llm.WithContext(ctx),
			llm.WithModel(cfg.Model),
			llm.WithBedrock(cfg.BedrockRegion),
		), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, apperr.New(apperr.KindConfig, "app.newInvoker", "ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return anthropic.NewInvoker(
			llm.WithContext(ctx),
			llm.WithModel(cfg.Model),
			llm.WithApiKey(cfg.APIKey),
		), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, apperr.Newf(apperr.KindConfig, "app.newInvoker", "unknown llm provider %q", cfg.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Call summary service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Error().Err(err).Msg("Error closing publisher")
	}
	shutdownLogger.Info().
		Dur("uptime", time.Since(a.StartupTime)).
		Msg("Call summary service shutting down")
}
