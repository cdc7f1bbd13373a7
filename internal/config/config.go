package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the process configuration, loaded from the environment.
type Config struct {
	Service       ServiceConfig
	Storage       StorageConfig
	LLM           LLMConfig
	Kafka         KafkaConfig
	Lambda        LambdaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
	Env       string
}

// StorageConfig selects and configures the object storage collaborator.
type StorageConfig struct {
	Provider     string // s3, memory
	OutputBucket string
	Region       string
	Endpoint     string
	UsePathStyle bool
	ListMaxKeys  int
}

// LLMConfig selects and configures the language-model collaborator.
type LLMConfig struct {
	Provider      string // bedrock, anthropic, mock
	Model         string
	APIKey        string
	BedrockRegion string
	MaxTokens     int64
	Concurrency   int
}

// KafkaConfig configures the work-item queue.
type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	DLQTopic  string
	GroupID   string
	Principal string
	BatchSize int
}

// LambdaConfig configures the SQS entrypoint.
type LambdaConfig struct {
	PartialBatch bool
}

// ObservabilityConfig configures logging and the metrics server.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// Load reads the configuration from the environment, falling back to defaults
// for unset or unparsable values.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-call-summary")
	env := envOrDefault("ENV", "prod")

	logFormat := "json"
	if env == "dev" {
		logFormat = "console"
	}

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
			Env:       env,
		},
		Storage: StorageConfig{
			Provider:     envOrDefault("STORAGE_PROVIDER", "s3"),
			OutputBucket: os.Getenv("S3_OUTPUT_BUCKET"),
			Region:       envOrDefault("AWS_REGION", "us-east-1"),
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			UsePathStyle: envOrDefaultBool("S3_USE_PATH_STYLE", false),
			ListMaxKeys:  envOrDefaultInt("S3_SIBLING_MAX_KEYS", 5),
		},
		LLM: LLMConfig{
			Provider:      envOrDefault("LLM_PROVIDER", "bedrock"),
			Model:         envOrDefault("LLM_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),
			APIKey:        os.Getenv("ANTHROPIC_API_KEY"),
			BedrockRegion: envOrDefault("BEDROCK_REGION", "us-east-1"),
			MaxTokens:     int64(envOrDefaultInt("LLM_MAX_TOKENS", 4096)),
			Concurrency:   envOrDefaultInt("LLM_CONCURRENCY", 1),
		},
		Kafka: KafkaConfig{
			Enabled:   envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:   envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:     envOrDefault("KAFKA_TOPIC", "genesys.metadata.work-items"),
			DLQTopic:  os.Getenv("KAFKA_DLQ_TOPIC"),
			GroupID:   envOrDefault("KAFKA_GROUP_ID", "call-summary-loader"),
			Principal: envOrDefault("KAFKA_PRINCIPAL", principal),
			BatchSize: envOrDefaultInt("KAFKA_BATCH_SIZE", 10),
		},
		Lambda: LambdaConfig{
			PartialBatch: envOrDefaultBool("LAMBDA_PARTIAL_BATCH", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", logFormat),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
