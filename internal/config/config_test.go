package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("API_BASE_URL", "http://localhost:8080/api")
	t.Setenv("DB_DSN", "postgres://localhost/coach")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"ENV", "REDIS_ADDR", "REDIS_DB", "API_TIMEOUT", "DIGEST_HOUR", "TIMEZONE", "MIGRATIONS_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 7, cfg.DigestHour)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("DIGEST_HOUR", "6")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 6, cfg.DigestHour)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing token", "TELEGRAM_TOKEN", ""},
		{"missing api", "API_BASE_URL", ""},
		{"missing dsn", "DB_DSN", ""},
		{"bad timeout", "API_TIMEOUT", "soon"},
		{"bad digest hour", "DIGEST_HOUR", "25"},
		{"bad redis db", "REDIS_DB", "first"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
