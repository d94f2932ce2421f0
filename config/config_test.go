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

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 7*24*time.Hour, cfg.InviteExpiration)
	assert.Empty(t, cfg.WebhookURL)
	assert.Equal(t, "https://www.googleapis.com/calendar/v3", cfg.CalendarBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TASTY_SERVER_PORT", "9090")
	t.Setenv("TASTY_WEBHOOK_URL", "https://hooks.example.com/tasks")
	t.Setenv("TASTY_JWT_EXPIRATION", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "https://hooks.example.com/tasks", cfg.WebhookURL)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
}
