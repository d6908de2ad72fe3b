// Package config loads staffsense-engine configuration from config.yaml and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for staffsense-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"9000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// HR database (PostgreSQL, read-only from this service's perspective)
	Database DatabaseConfig `yaml:"database"`

	// Similarity index (embedded sqlite-vec database)
	VectorStore VectorStoreConfig `yaml:"vector_store"`

	// LLM endpoints for generation, summarization, and embeddings
	LLM LLMConfig `yaml:"llm"`

	// Router behavior
	Router RouterConfig `yaml:"router"`

	// Background synchronization
	Sync SyncConfig `yaml:"sync"`

	// Optional Redis for checkpoint storage; empty host selects the file store
	Redis RedisConfig `yaml:"redis"`
}

// DatabaseConfig holds PostgreSQL connection configuration for the HR store.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"staffsense"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"hr"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// VectorStoreConfig holds configuration for the embedded similarity index.
type VectorStoreConfig struct {
	// Path is the sqlite database file holding documents and vectors.
	Path string `yaml:"path" env:"VECTOR_STORE_PATH" env-default:"staffsense_index.db"`
	// Dimensions must match the embedding model's output length.
	Dimensions int `yaml:"dimensions" env:"VECTOR_DIMENSIONS" env-default:"1536"`
}

// LLMConfig holds the OpenAI-compatible endpoint configuration.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.groq.com/openai/v1"`
	Model          string `yaml:"model" env:"LLM_MODEL" env-default:"llama-3.3-70b-versatile"`
	EmbeddingModel string `yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey         string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
}

// RouterConfig controls query routing behavior.
type RouterConfig struct {
	// ForceFallback makes every request take the semantic fallback path
	// regardless of the validator's verdict. Off by default; exists only to
	// reproduce legacy behavior during comparisons.
	ForceFallback bool `yaml:"force_fallback" env:"ROUTER_FORCE_FALLBACK" env-default:"false"`
	// FallbackTopK is the candidate count for similarity search.
	FallbackTopK int `yaml:"fallback_top_k" env:"ROUTER_FALLBACK_TOP_K" env-default:"20"`
}

// SyncConfig controls the background synchronization loop.
type SyncConfig struct {
	// IntervalSeconds between ticks of the background sync loop.
	IntervalSeconds int `yaml:"interval_seconds" env:"SYNC_INTERVAL_SECONDS" env-default:"60"`
	// CheckpointPath is the JSON state file used when Redis is not configured.
	CheckpointPath string `yaml:"checkpoint_path" env:"SYNC_CHECKPOINT_PATH" env-default:"sync_state.json"`
}

// Interval returns the sync interval as a duration.
func (c *SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// RedisConfig holds optional Redis configuration for checkpoint storage.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When the file does not exist, configuration comes from the
// environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.VectorStore.Dimensions <= 0 {
		return fmt.Errorf("vector_store.dimensions must be positive, got %d", c.VectorStore.Dimensions)
	}
	if c.Sync.IntervalSeconds <= 0 {
		return fmt.Errorf("sync.interval_seconds must be positive, got %d", c.Sync.IntervalSeconds)
	}
	if c.Router.FallbackTopK <= 0 {
		return fmt.Errorf("router.fallback_top_k must be positive, got %d", c.Router.FallbackTopK)
	}
	return nil
}
