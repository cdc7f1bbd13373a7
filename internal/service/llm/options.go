package llm

import "context"

type Option func(*Options)

type Options struct {
	ApiKey  string
	Model   string
	Region  string
	BaseURL string
	Bedrock bool
	Context context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithBedrock routes requests through Amazon Bedrock in region.
func WithBedrock(region string) Option {
	return func(o *Options) {
		o.Bedrock = true
		o.Region = region
	}
}

func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
