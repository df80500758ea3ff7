package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return Parse(env.Options{Environment: vars})
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parseWith(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 2000, cfg.OpenAI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-9)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "sqlite3", cfg.History.Driver)
	assert.False(t, cfg.Archive.Enabled())
	assert.False(t, cfg.APIKeyConfigured())
	assert.False(t, cfg.ModelEnabled())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parseWith(t, map[string]string{
		"APP_ENV":              "production",
		"PORT":                 ":8081",
		"JWT_SECRET":           "s3cret",
		"JWT_EXPIRATION_HOURS": "2",
		"ALLOWED_ORIGINS":      "https://a.example, https://b.example,",
		"OPENAI_API_KEY":       "sk-test",
		"OPENAI_TEMPERATURE":   "0.2",
		"HISTORY_DB_DRIVER":    "pgx",
		"HISTORY_DB_DSN":       "postgres://u:p@localhost/db",
		"ARCHIVE_ENDPOINT":     "http://localhost:9000",
		"ARCHIVE_BUCKET":       "sql",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ModelEnabled())
	assert.InDelta(t, 0.2, cfg.OpenAI.Temperature, 1e-9)
	assert.True(t, cfg.Archive.Enabled())
}

func TestParseRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		vars map[string]string
	}{
		{"production without secret", map[string]string{"APP_ENV": "production"}},
		{"unknown driver", map[string]string{"HISTORY_DB_DRIVER": "oracle"}},
		{"pgx without dsn", map[string]string{"HISTORY_DB_DRIVER": "pgx"}},
		{"temperature out of range", map[string]string{"OPENAI_TEMPERATURE": "3"}},
		{"zero max tokens", map[string]string{"OPENAI_MAX_TOKENS": "0"}},
		{"zero rate limit", map[string]string{"RATE_LIMIT_MAX": "0"}},
		{"bad duration", map[string]string{"RATE_LIMIT_WINDOW": "soon"}},
		{"wildcard origin", map[string]string{"ALLOWED_ORIGINS": "*"}},
		{"wildcard among origins", map[string]string{"ALLOWED_ORIGINS": "https://a.example, *"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseWith(t, tc.vars)
			assert.Error(t, err)
		})
	}
}

func TestModelEnabledRequiresSecretKeyPrefix(t *testing.T) {
	cfg, err := parseWith(t, map[string]string{"OPENAI_API_KEY": "not-a-key"})
	require.NoError(t, err)

	assert.True(t, cfg.APIKeyConfigured())
	assert.False(t, cfg.ModelEnabled())
}
