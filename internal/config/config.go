package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderMock      = "mock"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	FilterOff    = "off"
	FilterCoarse = "coarse"
	FilterFull   = "full"
)

type Config struct {
	Port         string `env:"PORT"        envDefault:"8080"`
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string `env:"LOG_LEVEL"   envDefault:"info"`
	LogLevel     slog.Level

	LLMProvider      string        `env:"LLM_PROVIDER"      envDefault:"mock"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	ModelName        string        `env:"MODEL_NAME"`
	NarrativeTimeout time.Duration `env:"NARRATIVE_TIMEOUT" envDefault:"30s"`
	DialogueFilter   string        `env:"DIALOGUE_FILTER"   envDefault:"full"`

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL"       envDefault:"redis://localhost:6379"`
	SnapshotTTL    time.Duration `env:"SNAPSHOT_TTL"    envDefault:"0s"`
	SQLitePath     string        `env:"SQLITE_PATH"     envDefault:"kingdom.db"`

	// RandomSeed 0 seeds from the clock.
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.DialogueFilter = strings.ToLower(strings.TrimSpace(cfg.DialogueFilter))
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel(cfg.LLMProvider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown providers, storage backends and filter modes.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderMock, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %s, %s or %s)", c.LLMProvider, ProviderAnthropic, ProviderGemini, ProviderMock)
	}
	switch c.StorageBackend {
	case BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", c.StorageBackend, BackendRedis, BackendSQLite)
	}
	switch c.DialogueFilter {
	case FilterOff, FilterCoarse, FilterFull:
	default:
		return fmt.Errorf("unknown DIALOGUE_FILTER %q (want %s, %s or %s)", c.DialogueFilter, FilterFull, FilterCoarse, FilterOff)
	}
	if c.NarrativeTimeout <= 0 {
		return fmt.Errorf("NARRATIVE_TIMEOUT must be positive, got %s", c.NarrativeTimeout)
	}
	if c.SnapshotTTL < 0 {
		return fmt.Errorf("SNAPSHOT_TTL must not be negative, got %s", c.SnapshotTTL)
	}
	return nil
}

// DefaultModel returns the model used when MODEL_NAME is unset.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-1.5-flash-latest"
	default:
		return ""
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
