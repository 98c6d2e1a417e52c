// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration shared by the commands.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error
	Timeout  time.Duration

	// Backends
	GoogleKey      string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string

	// Dispatch and extraction
	RetriesPerBackend int
	RetryDelay        time.Duration
	MaxAttempts       int
	CatalogTTL        time.Duration

	// Storage
	DatabaseURL string

	// Digest publishing
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool
}

// Load reads configuration from the environment. It loads a .env file if
// present (silent fail if not found).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("NEWSBRIEF_PORT", "8000"),
		LogLevel:          getEnvOrDefault("NEWSBRIEF_LOG_LEVEL", "info"),
		Timeout:           getEnvDurationOrDefault("NEWSBRIEF_TIMEOUT", 5*time.Minute),
		GoogleKey:         os.Getenv("GOOGLE_API_KEY"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    os.Getenv("ANTHROPIC_MODEL"),
		RetriesPerBackend: getEnvIntOrDefault("NEWSBRIEF_RETRIES_PER_BACKEND", 2),
		RetryDelay:        getEnvDurationOrDefault("NEWSBRIEF_RETRY_DELAY", time.Second),
		MaxAttempts:       getEnvIntOrDefault("NEWSBRIEF_MAX_ATTEMPTS", 10),
		CatalogTTL:        getEnvDurationOrDefault("NEWSBRIEF_CATALOG_TTL", 6*time.Hour),
		DatabaseURL:       os.Getenv("NEWSBRIEF_DATABASE_URL"),
		S3Endpoint:        os.Getenv("NEWSBRIEF_S3_ENDPOINT"),
		S3Bucket:          os.Getenv("NEWSBRIEF_S3_BUCKET"),
		S3AccessKey:       os.Getenv("NEWSBRIEF_S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("NEWSBRIEF_S3_SECRET_KEY"),
		S3Region:          os.Getenv("NEWSBRIEF_S3_REGION"),
		S3UseSSL:          getEnvBoolOrDefault("NEWSBRIEF_S3_USE_SSL", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if c.GoogleKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.RetriesPerBackend < 1 {
		return fmt.Errorf("NEWSBRIEF_RETRIES_PER_BACKEND must be at least 1, got %d", c.RetriesPerBackend)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("NEWSBRIEF_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("NEWSBRIEF_RETRY_DELAY must not be negative")
	}
	if c.OpenAIModel != "" && c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when OPENAI_MODEL is set")
	}
	if c.AnthropicModel != "" && c.AnthropicKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when ANTHROPIC_MODEL is set")
	}
	if c.S3Enabled() && (c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "") {
		return fmt.Errorf("NEWSBRIEF_S3_BUCKET, NEWSBRIEF_S3_ACCESS_KEY and NEWSBRIEF_S3_SECRET_KEY are required when NEWSBRIEF_S3_ENDPOINT is set")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// S3Enabled reports whether digests are published to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
