package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/festival")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.AllowRejectedReopen)
}

func TestLoadRequiredVariables(t *testing.T) {
	t.Run("database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/festival")
		t.Setenv("JWT_SECRET_KEY", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET_KEY")
	})
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PUBLIC_URL", "https://festival.example.org")
	t.Setenv("SMTP_FROM", "noreply@festival.example.org")
	t.Setenv("ALLOW_REJECTED_REOPEN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "https://festival.example.org", cfg.PublicURL)
	assert.True(t, cfg.AllowRejectedReopen)

	// The contact inbox falls back to the sending address.
	assert.Equal(t, "noreply@festival.example.org", cfg.ContactInbox)
}

func TestLoadPortValidation(t *testing.T) {
	setRequired(t)

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "eighty")
		_, err := Load()
		assert.ErrorContains(t, err, "SERVER_PORT")
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "70000")
		_, err := Load()
		assert.ErrorContains(t, err, "between 1 and 65535")
	})
}

func TestBoolFromEnv(t *testing.T) {
	t.Setenv("ALLOW_REJECTED_REOPEN", "definitely")
	assert.False(t, boolFromEnv("ALLOW_REJECTED_REOPEN"))

	t.Setenv("ALLOW_REJECTED_REOPEN", "1")
	assert.True(t, boolFromEnv("ALLOW_REJECTED_REOPEN"))
}
