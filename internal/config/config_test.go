package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "gotacheck.db", cfg.DBPath)
	assert.Equal(t, "openrouter", cfg.AIBackend)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.AnthropicModel)
	assert.Equal(t, 300*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, 20, cfg.MaxMenuDishes)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("AI_BACKEND", "anthropic")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("REQUEST_INTERVAL", "1s")
	t.Setenv("MAX_MENU_DISHES", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, "anthropic", cfg.AIBackend)
	assert.Equal(t, "sk-or-test", cfg.OpenRouterAPIKey)
	assert.Equal(t, time.Second, cfg.RequestInterval)
	assert.Equal(t, 5, cfg.MaxMenuDishes)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REQUEST_INTERVAL", "soon")
	t.Setenv("MAX_MENU_DISHES", "many")

	cfg := Load()

	assert.Equal(t, 300*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, 20, cfg.MaxMenuDishes)
}
