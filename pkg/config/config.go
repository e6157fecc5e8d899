// Package config loads service configuration from environment variables,
// an optional config.yaml, and defaults, in that priority order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ServiceName and Version identify the service in health responses and logs.
const (
	ServiceName = "faqrag"
	Version     = "1.0.0"
)

var (
	// ErrMissingAPIKey indicates OPENAI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing OpenAI API key")

	// ErrInvalidVectorSize indicates a non-positive vector size.
	ErrInvalidVectorSize = errors.New("invalid vector size")

	// ErrInvalidSearchLimit indicates a non-positive search limit.
	ErrInvalidSearchLimit = errors.New("invalid search limit")

	// ErrInvalidScoreThreshold indicates a score threshold outside [0, 1].
	ErrInvalidScoreThreshold = errors.New("invalid score threshold")

	// ErrInvalidTemperature indicates a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates a non-positive max token count.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")
)

// Config holds all runtime configuration. It is immutable after Load and
// passed by value into constructors.
type Config struct {
	OpenAIAPIKey          string `mapstructure:"openai_api_key"`
	OpenAIEmbeddingModel  string `mapstructure:"openai_embedding_model"`
	OpenAICompletionModel string `mapstructure:"openai_completion_model"`
	OpenAIBaseURL         string `mapstructure:"openai_base_url"`

	QdrantHost           string  `mapstructure:"qdrant_host"`
	QdrantPort           int     `mapstructure:"qdrant_port"`
	QdrantCollection     string  `mapstructure:"qdrant_collection_name"`
	QdrantVectorSize     int     `mapstructure:"qdrant_vector_size"`
	QdrantSearchLimit    int     `mapstructure:"qdrant_search_limit"`
	QdrantScoreThreshold float32 `mapstructure:"qdrant_search_score_threshold"`

	GenerationTemperature float64 `mapstructure:"generation_temperature"`
	GenerationMaxTokens   int     `mapstructure:"generation_max_tokens"`

	PromptsDir string `mapstructure:"prompts_dir"`

	HTTPPort   string `mapstructure:"http_port"`
	CORSOrigin string `mapstructure:"cors_origin"`

	NATSURL       string `mapstructure:"nats_url"`
	IngestSubject string `mapstructure:"ingest_subject"`

	LoaderDelayMS int `mapstructure:"loader_delay_ms"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration and validates it. A missing config.yaml is fine;
// a malformed one is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai_embedding_model", "text-embedding-3-large")
	v.SetDefault("openai_completion_model", "gpt-4o-mini")

	v.SetDefault("qdrant_host", "localhost")
	v.SetDefault("qdrant_port", 6334)
	v.SetDefault("qdrant_collection_name", "qa_pairs")
	v.SetDefault("qdrant_vector_size", 3072)
	v.SetDefault("qdrant_search_limit", 5)
	v.SetDefault("qdrant_search_score_threshold", 0.7)

	v.SetDefault("generation_temperature", 0.7)
	v.SetDefault("generation_max_tokens", 800)

	v.SetDefault("prompts_dir", "prompts")

	v.SetDefault("http_port", "8080")
	v.SetDefault("cors_origin", "*")

	v.SetDefault("nats_url", "nats://localhost:4222")
	v.SetDefault("ingest_subject", "qa.pairs.add")

	v.SetDefault("loader_delay_ms", 500)

	v.SetDefault("log_level", "info")
}

func bindEnv(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("config: bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("openai_embedding_model", "OPENAI_EMBEDDING_MODEL")
	mustBind("openai_completion_model", "OPENAI_COMPLETION_MODEL")
	mustBind("openai_base_url", "OPENAI_BASE_URL")

	mustBind("qdrant_host", "QDRANT_HOST")
	mustBind("qdrant_port", "QDRANT_PORT")
	mustBind("qdrant_collection_name", "QDRANT_COLLECTION_NAME")
	mustBind("qdrant_vector_size", "QDRANT_VECTOR_SIZE")
	mustBind("qdrant_search_limit", "QDRANT_SEARCH_LIMIT")
	mustBind("qdrant_search_score_threshold", "QDRANT_SEARCH_SCORE_THRESHOLD")

	mustBind("generation_temperature", "GENERATION_TEMPERATURE")
	mustBind("generation_max_tokens", "GENERATION_MAX_TOKENS")

	mustBind("prompts_dir", "PROMPTS_DIR")

	mustBind("http_port", "HTTP_PORT")
	mustBind("cors_origin", "CORS_ORIGIN")

	mustBind("nats_url", "NATS_URL")
	mustBind("ingest_subject", "INGEST_SUBJECT")

	mustBind("loader_delay_ms", "LOADER_DELAY_MS")

	mustBind("log_level", "LOG_LEVEL")
}

// Validate fails fast on configuration the service cannot run with.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("config: %w", ErrMissingAPIKey)
	}
	if c.QdrantVectorSize <= 0 {
		return fmt.Errorf("config: %w: %d", ErrInvalidVectorSize, c.QdrantVectorSize)
	}
	if c.QdrantSearchLimit <= 0 {
		return fmt.Errorf("config: %w: %d", ErrInvalidSearchLimit, c.QdrantSearchLimit)
	}
	if c.QdrantScoreThreshold < 0 || c.QdrantScoreThreshold > 1 {
		return fmt.Errorf("config: %w: %v", ErrInvalidScoreThreshold, c.QdrantScoreThreshold)
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		return fmt.Errorf("config: %w: %v", ErrInvalidTemperature, c.GenerationTemperature)
	}
	if c.GenerationMaxTokens <= 0 {
		return fmt.Errorf("config: %w: %d", ErrInvalidMaxTokens, c.GenerationMaxTokens)
	}
	return nil
}

// QdrantAddr returns the host:port gRPC address of the vector store.
func (c *Config) QdrantAddr() string {
	return net.JoinHostPort(c.QdrantHost, strconv.Itoa(c.QdrantPort))
}

// LoaderDelay returns the inter-record pacing for dataset loads.
func (c *Config) LoaderDelay() time.Duration {
	return time.Duration(c.LoaderDelayMS) * time.Millisecond
}

// SlogLevel maps the configured log level to a slog.Level. Unknown values
// fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
