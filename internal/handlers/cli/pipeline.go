package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/hookwatch/internal/hookproc"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the chainhook
// pipeline: chain-event ingestion, predicate evaluation and occurrence
// delivery.
//
// Usage example:
//
//	hookwatch start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(hp hookproc.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the chainhook pipeline including chain-event ingestion, evaluation and delivery.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := hp.Start(ctx); err != nil {
				return err
			}
			defer hp.Close()

			<-quit
			return nil
		},
	}
}
