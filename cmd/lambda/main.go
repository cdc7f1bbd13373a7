package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"call-summary-service/internal/app"
	"call-summary-service/internal/config"
	"call-summary-service/internal/observability/logging"
	"call-summary-service/internal/service/dispatch"
)

type batchDispatcher interface {
	HandleBatch(ctx context.Context, msgs []dispatch.Message) (dispatch.Result, error)
	HandleBatchIsolated(ctx context.Context, msgs []dispatch.Message) dispatch.Result
}

// Response is the invocation result. BatchItemFailures is only set in
// partial-batch mode.
type Response struct {
	RecordsProcessed  int                           `json:"records_processed"`
	BatchItemFailures []events.SQSBatchItemFailure `json:"batchItemFailures,omitempty"`
}

func newHandler(d batchDispatcher, partialBatch bool) func(context.Context, events.SQSEvent) (Response, error) {
	return func(ctx context.Context, ev events.SQSEvent) (Response, error) {
		msgs := make([]dispatch.Message, len(ev.Records))
		for i, r := range ev.Records {
			msgs[i] = dispatch.Message{ID: r.MessageId, Body: []byte(r.Body)}
		}

		if !partialBatch {
			res, err := d.HandleBatch(ctx, msgs)
			if err != nil {
				return Response{}, err
			}
			return Response{RecordsProcessed: res.RecordsProcessed}, nil
		}

		res := d.HandleBatchIsolated(ctx, msgs)
		resp := Response{RecordsProcessed: res.RecordsProcessed, BatchItemFailures: []events.SQSBatchItemFailure{}}
		for _, f := range res.Failures {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: f.MessageID})
		}
		return resp, nil
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Observability.LogLevel
	logCfg.Service = cfg.Service.Principal
	logging.Init(logCfg)

	// Collaborators are built once per container and reused across invocations.
	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	d, err := application.Dispatcher(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dispatcher")
	}

	lambda.Start(newHandler(d, cfg.Lambda.PartialBatch))
}
