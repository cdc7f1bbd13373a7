// Package anthropic provides a Claude invoker, direct or through Amazon Bedrock.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"call-summary-service/internal/service/llm"
)

type anthropicInvoker struct {
	options llm.Options
	client  *anthropic.Client
}

func (i *anthropicInvoker) Invoke(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	rsp, err := i.client.Messages.New(ctx, newParams(i.options.Model, prompt, cfg))
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String(), nil
}

// newParams omits top_p unless it narrows sampling; newer models reject
// temperature and top_p together, and 1 is the API default anyway.
func newParams(model, prompt string, cfg llm.GenerationConfig) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:         anthropic.Model(model),
		MaxTokens:     cfg.MaxTokens,
		Temperature:   anthropic.Float(cfg.Temperature),
		StopSequences: cfg.StopSequences,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if cfg.TopP > 0 && cfg.TopP < 1 {
		params.TopP = anthropic.Float(cfg.TopP)
	}
	return params
}

// classify maps permission failures onto llm.ErrAccessDenied.
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", llm.ErrAccessDenied, err)
	}
	return err
}

func NewInvoker(opts ...llm.Option) llm.Invoker {
	options := llm.NewOptions(opts...)

	i := &anthropicInvoker{
		options: options,
	}

	var reqOpts []anthropicopt.RequestOption
	if options.Bedrock {
		reqOpts = append(reqOpts, bedrock.WithLoadDefaultConfig(options.Context, awsconfig.WithRegion(options.Region)))
	} else {
		reqOpts = append(reqOpts, anthropicopt.WithAPIKey(options.ApiKey))
	}
	if options.BaseURL != "" {
		reqOpts = append(reqOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}

	client := anthropic.NewClient(reqOpts...)

	i.client = &client

	return i
}
