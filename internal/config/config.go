package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	ProfilesPath string        `env:"PROFILES_PATH"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-pro"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"revpipe.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisURL     string   `env:"REDIS_URL"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"revpipe.content"`

	VercelToken  string `env:"VERCEL_TOKEN"`
	VercelAPIURL string `env:"VERCEL_API_URL"`

	ThrottleMode       string        `env:"THROTTLE_MODE" envDefault:"fixed"`
	ThrottleDelay      time.Duration `env:"THROTTLE_DELAY" envDefault:"1s"`
	AssumedViews       int           `env:"ASSUMED_VIEWS" envDefault:"10000"`
	AutomationInterval time.Duration `env:"AUTOMATION_INTERVAL" envDefault:"24h"`
	JobRetention       int           `env:"JOB_RETENTION" envDefault:"200"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StoreDriver {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER %q: want memory, sqlite or postgres", cfg.StoreDriver)
	}
	if cfg.StoreDriver == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("STORE_DRIVER postgres requires DATABASE_URL")
	}
	if cfg.AssumedViews <= 0 {
		return Config{}, fmt.Errorf("ASSUMED_VIEWS must be positive, got %d", cfg.AssumedViews)
	}
	return cfg, nil
}
