package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.HTTPTimeout != 15*time.Second || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.StoreDriver != "memory" || cfg.ThrottleDelay != time.Second || cfg.AssumedViews != 10000 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.GeminiModel != "gemini-pro" || cfg.AutomationInterval != 24*time.Hour || cfg.JobRetention != 200 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("THROTTLE_MODE", "token_bucket")
	t.Setenv("THROTTLE_DELAY", "250ms")
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.ThrottleMode != "token_bucket" || cfg.ThrottleDelay != 250*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFromEnvRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"bad driver":      {"STORE_DRIVER": "mongo"},
		"postgres no url": {"STORE_DRIVER": "postgres"},
		"bad duration":    {"HTTP_TIMEOUT": "soon"},
		"zero views":      {"ASSUMED_VIEWS": "0"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
