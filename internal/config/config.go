// Package config loads process configuration from the environment under the
// HOOKWATCH prefix.
package config

import "github.com/kelseyhightower/envconfig"

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "hookwatch"

// Config holds every runtime setting of the hookwatch process.
type Config struct {
	// LogLevel is the minimum level emitted by the global logger.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TelemetryEnabled turns on OTLP log/metric/trace export.
	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// FeedPath is the newline-delimited JSON chain-event feed consumed by
	// the start command.
	FeedPath string `envconfig:"FEED_PATH"`

	// EvaluationWorkers is the number of goroutines hook evaluation is
	// sharded across per chain event.
	EvaluationWorkers int `envconfig:"EVALUATION_WORKERS" default:"4"`

	// Redis connection settings for the chainhook specification store.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process(envPrefix, &cfg)
	return cfg, err
}
