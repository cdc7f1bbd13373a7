package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"call-summary-service/internal/app"
	"call-summary-service/internal/config"
	httpapi "call-summary-service/internal/http"
	"call-summary-service/internal/models"
	"call-summary-service/internal/observability"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/service/dispatch"
)

var cli struct {
	Consume  consumeCmd  `cmd:"" help:"Consume work items from Kafka and write summary records."`
	Discover discoverCmd `cmd:"" help:"Enqueue a work item for every metadata artifact under a prefix."`
	Process  processCmd  `cmd:"" help:"Process a single metadata artifact."`
	Report   reportCmd   `cmd:"" help:"Export one day of summary records as XLSX."`
	Serve    serveCmd    `cmd:"" help:"Serve the HTTP dispatch API."`
}

type consumeCmd struct{}

func (c *consumeCmd) Run(ctx context.Context, a *app.Application, cfg *config.Config) error {
	obs := observability.NewServer(cfg.Observability.MetricsAddr)
	obs.Start()
	defer shutdown(obs.Shutdown)

	consumer, err := a.Consumer(ctx)
	if err != nil {
		return err
	}
	defer consumer.Close()

	obs.SetReady(true)
	log.Info().Str("topic", cfg.Kafka.Topic).Str("groupId", cfg.Kafka.GroupID).Msg("Consuming work items")
	return consumer.Run(ctx)
}

type discoverCmd struct {
	Bucket string `help:"Input bucket holding the recording artifacts." required:""`
	Prefix string `help:"Key prefix to scan." default:""`
}

func (c *discoverCmd) Run(ctx context.Context, a *app.Application) error {
	d, err := a.Discoverer()
	if err != nil {
		return err
	}
	res, err := d.Run(ctx, c.Bucket, c.Prefix)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type processCmd struct {
	Bucket string `arg:"" help:"Input bucket."`
	Key    string `arg:"" help:"Metadata artifact key."`
}

func (c *processCmd) Run(ctx context.Context, a *app.Application) error {
	d, err := a.Dispatcher(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(models.WorkItem{S3BucketName: c.Bucket, S3ObjectKey: c.Key})
	if err != nil {
		return err
	}
	res, err := d.HandleBatch(ctx, []dispatch.Message{{ID: "cli", Body: body}})
	if err != nil {
		return err
	}
	return printJSON(res)
}

type reportCmd struct {
	Day string `help:"Partition day (YYYY-MM-DD)." required:""`
	Out string `help:"Output XLSX path." default:"summary.xlsx" type:"path"`
}

func (c *reportCmd) Run(ctx context.Context, a *app.Application) error {
	day, err := time.Parse(time.DateOnly, c.Day)
	if err != nil {
		return fmt.Errorf("invalid --day %q: %w", c.Day, err)
	}
	exp, err := a.Reporter()
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	n, err := exp.Export(ctx, day, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info().Str("path", c.Out).Int("rows", n).Msg("Report written")
	return nil
}

type serveCmd struct{}

func (c *serveCmd) Run(ctx context.Context, a *app.Application, cfg *config.Config) error {
	d, err := a.Dispatcher(ctx)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(a, d),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Call summary service started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP serve failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down HTTP server")
	shutdown(server.Shutdown)
	return nil
}

func shutdown(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	// .env is optional
	_ = godotenv.Load()
	cfg := config.Load()

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Observability.LogLevel
	logCfg.Service = cfg.Service.Principal
	logCfg.Format = cfg.Observability.LogFormat
	logging.Init(logCfg)

	kctx := kong.Parse(&cli,
		kong.Name("call-summary"),
		kong.Description("Call recording metadata ingestion and enrichment."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(application, cfg)
	application.Shutdown()
	kctx.FatalIfErrorf(err)
}
