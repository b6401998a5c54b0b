package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.False(t, cfg.Memory.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.Memory.OllamaURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REVIEWER_SERVER_PORT", "9999")
	t.Setenv("REVIEWER_GITHUB_TOKEN", "ghtoken")
	t.Setenv("REVIEWER_MEMORY_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "ghtoken", cfg.GitHub.Token)
	assert.True(t, cfg.Memory.Enabled)
}

func TestServerAddr(t *testing.T) {
	cfg := Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8081}}
	assert.Equal(t, "127.0.0.1:8081", cfg.ServerAddr())
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:    ServerConfig{Port: 8080},
		HTTP:      HTTPConfig{RequestTimeout: time.Second},
		Anthropic: AnthropicConfig{Model: "claude-haiku-4-5-20251001"},
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing port", func(t *testing.T) {
		c := valid
		c.Server.Port = 0
		assert.Error(t, c.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		c := valid
		c.Anthropic.Model = ""
		assert.Error(t, c.Validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		c := valid
		c.HTTP.RequestTimeout = 0
		assert.Error(t, c.Validate())
	})

	t.Run("memory enabled without path", func(t *testing.T) {
		c := valid
		c.Memory = MemoryConfig{Enabled: true}
		assert.Error(t, c.Validate())
	})
}
