package main

import (
	"context"
	"os"

	"github.com/gabapcia/hookwatch/internal/config"
	"github.com/gabapcia/hookwatch/internal/delivery"
	"github.com/gabapcia/hookwatch/internal/handlers/cli"
	"github.com/gabapcia/hookwatch/internal/hookproc"
	"github.com/gabapcia/hookwatch/internal/hookregistry"
	"github.com/gabapcia/hookwatch/internal/infra/chainfeed/jsonl"
	"github.com/gabapcia/hookwatch/internal/infra/storage/redis"
	"github.com/gabapcia/hookwatch/internal/pkg/logger"
	"github.com/gabapcia/hookwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/hookwatch/internal/pkg/telemetry"
)

const serviceName = "hookwatch"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Telemetry must come up before the logger so the log bridge can attach
	// to the LoggerProvider.
	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			os.Stderr.WriteString("init telemetry: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	var (
		registry  = hookregistry.New(redisClient)
		source    = jsonl.NewSource(cfg.FeedPath)
		deliverer = delivery.New()

		processor = hookproc.New(source, redisClient, deliverer,
			hookproc.WithWorkers(cfg.EvaluationWorkers),
			hookproc.WithRetry(retry.New()),
		)
	)

	if err := cli.Run(ctx, registry, processor); err != nil {
		logger.Fatal(ctx, "hookwatch exited with error", "error", err)
	}
}
