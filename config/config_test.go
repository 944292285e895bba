package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "STORAGE_BACKEND", "BOLT_PATH", "DATABASE_URL", "REDIS_ADDR", "REDIS_DB",
		"SIMULATED_LATENCY", "SEED_USERS", "SEED_EVENTS", "JWT_SECRET", "JWT_EXPIRY",
		"BCRYPT_COST", "CORS_ORIGINS", "EMAIL_PROVIDER",
	} {
		t.Setenv(k, "")
	}

	cfg, err := fromEnv("development")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, time.Second, cfg.SimulatedLatency)
	assert.Equal(t, 20, cfg.SeedUsers)
	assert.True(t, cfg.SeedEvents)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "noop", cfg.EmailProvider)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "Bolt")
	t.Setenv("SIMULATED_LATENCY", "0s")
	t.Setenv("SEED_USERS", "3")
	t.Setenv("SEED_EVENTS", "false")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := fromEnv("production")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageBolt, cfg.StorageBackend)
	assert.Zero(t, cfg.SimulatedLatency)
	assert.Equal(t, 3, cfg.SeedUsers)
	assert.False(t, cfg.SeedEvents)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, env string
	}{
		{"unknown backend", "STORAGE_BACKEND", "cassandra", "development"},
		{"bad latency", "SIMULATED_LATENCY", "soon", "development"},
		{"negative latency", "SIMULATED_LATENCY", "-1s", "development"},
		{"bad seed count", "SEED_USERS", "many", "development"},
		{"negative seed count", "SEED_USERS", "-2", "development"},
		{"bad bool", "SEED_EVENTS", "maybe", "development"},
		{"missing secret in production", "JWT_SECRET", "", "production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "x")
			t.Setenv(tt.key, tt.value)
			_, err := fromEnv(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "production", "warn")
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	l = newLogger(&buf, "development", "")
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	l.Info("text")
	assert.Contains(t, buf.String(), "msg=text")
}
