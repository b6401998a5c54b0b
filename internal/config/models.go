package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds application configuration. It is built once at process
// start and passed into constructors; components never read the
// environment themselves.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if c.Anthropic.Model == "" {
		return errors.New("anthropic.model is required")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("http.request_timeout must be positive")
	}
	if c.Memory.Enabled && c.Memory.DBPath == "" {
		return errors.New("memory.db_path is required when memory is enabled")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerConfig contains webhook server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	WebhookSecret   string        `mapstructure:"webhook_secret"`
}

// HTTPConfig contains transport settings shared by all outbound calls.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// GitHubConfig describes the source API connection. An empty BaseURL
// targets api.github.com.
type GitHubConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// AnthropicConfig describes the model backend.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MemoryConfig describes the optional lesson store. Enabled=false is a
// valid state: reviews then run without past lessons.
type MemoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DBPath     string `mapstructure:"db_path"`
	OllamaURL  string `mapstructure:"ollama_url"`
	EmbedModel string `mapstructure:"embed_model"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
