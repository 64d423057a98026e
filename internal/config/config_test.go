package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.TelemetryEnabled)
		assert.Equal(t, 4, cfg.EvaluationWorkers)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 0, cfg.RedisDB)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("HOOKWATCH_LOG_LEVEL", "debug")
		t.Setenv("HOOKWATCH_TELEMETRY_ENABLED", "true")
		t.Setenv("HOOKWATCH_FEED_PATH", "/var/feeds/chain.jsonl")
		t.Setenv("HOOKWATCH_EVALUATION_WORKERS", "8")
		t.Setenv("HOOKWATCH_REDIS_ADDR", "redis:6380")
		t.Setenv("HOOKWATCH_REDIS_DB", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.TelemetryEnabled)
		assert.Equal(t, "/var/feeds/chain.jsonl", cfg.FeedPath)
		assert.Equal(t, 8, cfg.EvaluationWorkers)
		assert.Equal(t, "redis:6380", cfg.RedisAddr)
		assert.Equal(t, 3, cfg.RedisDB)
	})

	t.Run("malformed numeric value fails", func(t *testing.T) {
		t.Setenv("HOOKWATCH_EVALUATION_WORKERS", "many")

		_, err := Load()
		assert.Error(t, err)
	})
}
