package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_KEY", "service-key")
	t.Setenv("APP_SECRET_KEY", "app-secret")
	t.Setenv("PASSCODE", "hunter2")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "DateIdeas", cfg.App.Name)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, "date_ideas.json", cfg.Storage.Document)
	assert.Equal(t, time.Hour, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, 5, cfg.Security.LoginRateLimit)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.App.IsDevelopment())
	assert.False(t, cfg.Auth.CookieSecure)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("STORAGE_BUCKET", "photos")
	t.Setenv("STORAGE_SIGNED_URL_TTL", "15m")
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("SERVER_TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "photos", cfg.Storage.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, "https://project.supabase.co", cfg.Storage.URL)
	assert.Equal(t, "app-secret", cfg.Auth.SecretKey)
	assert.True(t, cfg.App.IsProduction())
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Server.TrustProxy)
	assert.True(t, cfg.Auth.CookieSecure, "production forces secure session cookies")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		extra map[string]string
	}{
		{name: "missing storage url", unset: "SUPABASE_URL"},
		{name: "missing storage key", unset: "SUPABASE_KEY"},
		{name: "missing secret", unset: "APP_SECRET_KEY"},
		{name: "missing passcode", unset: "PASSCODE"},
		{name: "bad port", extra: map[string]string{"SERVER_PORT": "70000"}},
		{name: "file output without filename", extra: map[string]string{"LOG_OUTPUT": "file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			for k, v := range tt.extra {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPasscodeHashOnly(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PASSCODE", "")
	t.Setenv("PASSCODE_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Passcode)
	assert.NotEmpty(t, cfg.Auth.PasscodeHash)
}
