// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// Load builds configuration from environment using viper with typed
// defaults and validation. A local .env file is folded into the
// environment first, without overriding variables already set.
func Load() (*Config, error) {
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix("REVIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.webhook_secret", "")

	v.SetDefault("http.request_timeout", 30*time.Second)

	v.SetDefault("github.base_url", "")
	v.SetDefault("github.token", "")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	v.SetDefault("memory.enabled", false)
	v.SetDefault("memory.db_path", "data/lessons.db")
	v.SetDefault("memory.ollama_url", "http://localhost:11434")
	v.SetDefault("memory.embed_model", "nomic-embed-text")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"server.webhook_secret",
		"http.request_timeout",
		"github.base_url",
		"github.token",
		"anthropic.api_key",
		"anthropic.model",
		"memory.enabled",
		"memory.db_path",
		"memory.ollama_url",
		"memory.embed_model",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
