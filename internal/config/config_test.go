package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "HTTP_TIMEOUT_SECONDS", "SAVED_LIMIT", "METRICS_MAX_SAMPLES", "METRICS_MAX_AGE", "METRICS_PRUNE_SCHEDULE", "METRICS_MAX_COUNTERS", "JWT_TTL", "ANALYTICS_QUEUE_SIZE"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 50, cfg.SavedLimit)
	assert.Equal(t, 1000, cfg.Metrics.MaxSamples)
	assert.Equal(t, time.Hour, cfg.Metrics.MaxAge)
	assert.Equal(t, 500, cfg.Metrics.MaxCounters)
	assert.Equal(t, "@every 5m", cfg.PruneSchedule)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 256, cfg.QueueSize)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("SAVED_LIMIT", "10")
	t.Setenv("METRICS_MAX_AGE", "30m")
	t.Setenv("METRICS_PRUNE_SCHEDULE", "*/10 * * * *")
	t.Setenv("ANALYTICS_SINK_URL", "http://sink.local/events")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.SavedLimit)
	assert.Equal(t, 30*time.Minute, cfg.Metrics.MaxAge)
	assert.Equal(t, "*/10 * * * *", cfg.PruneSchedule)
	assert.Equal(t, "http://sink.local/events", cfg.SinkURL)
}

func TestBadNumbersFallBack(t *testing.T) {
	t.Setenv("SAVED_LIMIT", "-4")
	t.Setenv("METRICS_MAX_SAMPLES", "lots")
	t.Setenv("JWT_TTL", "soon")
	cfg := FromEnv()
	assert.Equal(t, 50, cfg.SavedLimit)
	assert.Equal(t, 1000, cfg.Metrics.MaxSamples)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestJWTSecretRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DEV_INSECURE_JWT", "")

	cfg := FromEnv()
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrNoJWTSecret)
}

func TestDevSecretOnlyWhenOptedIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DEV_INSECURE_JWT", "true")

	cfg := FromEnv()
	assert.True(t, cfg.DevInsecureAuth)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())

	t.Setenv("JWT_SECRET", "real-secret")
	cfg = FromEnv()
	assert.Equal(t, "real-secret", cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())
}
