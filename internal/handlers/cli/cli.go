package cli

import (
	"context"
	"os"

	"github.com/gabapcia/hookwatch/internal/hookproc"
	"github.com/gabapcia/hookwatch/internal/hookregistry"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the hookwatch CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Starts the chainhook evaluation pipeline.
//   - `register`: Registers a chainhook from a JSON specification file.
//   - `deregister`: Removes a registered chainhook by UUID.
//   - `list`: Prints every registered chainhook.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - hr: The hookregistry service implementation used by hook commands.
//   - hp: The hookproc service implementation used by the pipeline command.
func Run(ctx context.Context, hr hookregistry.Service, hp hookproc.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "hookwatch",
		Description:           "Command-line interface for managing chainhooks and running the hookwatch pipeline.",
		Usage:                 "hookwatch [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(hp),
			registerHookCommand(hr),
			deregisterHookCommand(hr),
			listHooksCommand(hr),
		},
	}

	return app.Run(ctx, os.Args)
}
