// Package config provides configuration loading for wordsense.
//
// Configuration is read from a .env file, an optional YAML file and the
// process environment, in increasing order of precedence, with sensible
// defaults for everything that is not required.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Corpus sources.
const (
	SourceMongoDB = "mongodb"
	SourceFile    = "file"
)

// Embedding providers.
const (
	ProviderFastEmbed = "fastembed"
	ProviderTEI       = "tei"
	ProviderOpenAI    = "openai"
)

// Config holds the complete wordsense configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	GCP        GCPConfig        `koanf:"gcp"`
	Speech     SpeechConfig     `koanf:"speech"`
	MongoDB    MongoDBConfig    `koanf:"mongodb"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Corpus     CorpusConfig     `koanf:"corpus"`
	Feedback   FeedbackConfig   `koanf:"feedback"`
	Prediction PredictionConfig `koanf:"prediction"`
	Logging    LoggingConfig    `koanf:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigin   string        `koanf:"allowed_origin"`
	APIVersion      string        `koanf:"api_version"`
	BodyLimit       string        `koanf:"body_limit"`
	RateLimit       float64       `koanf:"rate_limit"` // requests per second per client, 0 disables
}

// GCPConfig identifies the Google Cloud project used for speech recognition.
type GCPConfig struct {
	ProjectID       string `koanf:"project_id"`
	CredentialsFile string `koanf:"credentials_file"` // empty uses application default credentials
}

// SpeechConfig holds the fixed recognition settings.
type SpeechConfig struct {
	Language            string  `koanf:"language"`
	Model               string  `koanf:"model"`
	Location            string  `koanf:"location"`
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`
}

// MongoDBConfig holds document store settings.
type MongoDBConfig struct {
	URI                Secret        `koanf:"uri"`
	Database           string        `koanf:"db_name"`
	CorpusCollection   string        `koanf:"corpus_collection"`
	FeedbackCollection string        `koanf:"feedback_collection"`
	ConnectTimeout     time.Duration `koanf:"connect_timeout"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `koanf:"provider"`
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url"`
	APIKey    Secret `koanf:"api_key"`
	CacheDir  string `koanf:"cache_dir"`
	BatchSize int    `koanf:"batch_size"`
	Workers   int    `koanf:"workers"`
}

// CorpusConfig selects where the labeled training records come from.
type CorpusConfig struct {
	Source string `koanf:"source"`
	Path   string `koanf:"path"`
}

// FeedbackConfig selects where feedback records are written.
type FeedbackConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// PredictionConfig holds prediction engine settings.
type PredictionConfig struct {
	TopK int `koanf:"top_k"`
}

// LoggingConfig holds the subset of logging settings exposed to operators.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Endpoint       string `koanf:"endpoint"`
	Protocol       string `koanf:"protocol"`
	Insecure       bool   `koanf:"insecure"`
	ServiceName    string `koanf:"service_name"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
	Prometheus     bool   `koanf:"prometheus"`
}

// DefaultConfidenceThreshold is the minimum accepted transcript confidence.
const DefaultConfidenceThreshold = 0.5

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.Speech.ConfidenceThreshold = DefaultConfidenceThreshold
	cfg.Telemetry.Insecure = true
	cfg.Telemetry.MetricsEnabled = true
	cfg.Telemetry.Prometheus = true
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.APIVersion == "" {
		cfg.Server.APIVersion = "v1"
	}
	if cfg.Server.BodyLimit == "" {
		cfg.Server.BodyLimit = "10M"
	}

	if cfg.Speech.Language == "" {
		cfg.Speech.Language = "en-US"
	}
	if cfg.Speech.Model == "" {
		cfg.Speech.Model = "short"
	}
	if cfg.Speech.Location == "" {
		cfg.Speech.Location = "global"
	}

	if cfg.MongoDB.CorpusCollection == "" {
		cfg.MongoDB.CorpusCollection = "training_data"
	}
	if cfg.MongoDB.FeedbackCollection == "" {
		cfg.MongoDB.FeedbackCollection = "feedback_data"
	}
	if cfg.MongoDB.ConnectTimeout == 0 {
		cfg.MongoDB.ConnectTimeout = 10 * time.Second
	}

	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = ProviderFastEmbed
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embeddings.BatchSize == 0 {
		cfg.Embeddings.BatchSize = 64
	}
	if cfg.Embeddings.Workers == 0 {
		cfg.Embeddings.Workers = 4
	}

	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = SourceMongoDB
	}
	if cfg.Feedback.Backend == "" {
		cfg.Feedback.Backend = SourceMongoDB
	}
	if cfg.Feedback.Path == "" {
		cfg.Feedback.Path = "feedback_data.jsonl"
	}

	if cfg.Prediction.TopK == 0 {
		cfg.Prediction.TopK = 3
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "wordsense"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.APIVersion == "" {
		return errors.New("api version is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %v", c.Server.RateLimit)
	}

	if c.GCP.ProjectID == "" {
		return errors.New("gcp project id is required (GCP_PROJECT_ID)")
	}
	if c.Speech.ConfidenceThreshold < 0 || c.Speech.ConfidenceThreshold > 1 {
		return fmt.Errorf("speech confidence threshold must be between 0 and 1, got %v", c.Speech.ConfidenceThreshold)
	}

	switch c.Embeddings.Provider {
	case ProviderFastEmbed, ProviderTEI, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == ProviderTEI && c.Embeddings.BaseURL == "" {
		return errors.New("embeddings base url is required for the tei provider")
	}
	if c.Embeddings.Provider == ProviderOpenAI && !c.Embeddings.APIKey.IsSet() {
		return errors.New("embeddings api key is required for the openai provider")
	}
	if c.Embeddings.BatchSize < 1 {
		return fmt.Errorf("embeddings batch size must be >= 1, got %d", c.Embeddings.BatchSize)
	}
	if c.Embeddings.Workers < 1 {
		return fmt.Errorf("embeddings workers must be >= 1, got %d", c.Embeddings.Workers)
	}

	switch c.Corpus.Source {
	case SourceMongoDB:
	case SourceFile:
		if c.Corpus.Path == "" {
			return errors.New("corpus path is required for the file source")
		}
	default:
		return fmt.Errorf("unknown corpus source %q", c.Corpus.Source)
	}

	switch c.Feedback.Backend {
	case SourceMongoDB:
	case SourceFile:
		if c.Feedback.Path == "" {
			return errors.New("feedback path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown feedback backend %q", c.Feedback.Backend)
	}

	if c.UsesMongoDB() {
		if !c.MongoDB.URI.IsSet() {
			return errors.New("mongodb uri is required (MONGODB_URI)")
		}
		if c.MongoDB.Database == "" {
			return errors.New("mongodb database name is required (MONGODB_DB_NAME)")
		}
	}

	if c.Prediction.TopK < 1 {
		return fmt.Errorf("prediction top_k must be >= 1, got %d", c.Prediction.TopK)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	return nil
}

// UsesMongoDB reports whether any component is backed by MongoDB.
func (c *Config) UsesMongoDB() bool {
	return c.Corpus.Source == SourceMongoDB || c.Feedback.Backend == SourceMongoDB
}
