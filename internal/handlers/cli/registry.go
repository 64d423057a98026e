package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/hookregistry"

	"github.com/urfave/cli/v3"
)

// registerHookCommand returns a CLI command that registers a chainhook from a
// JSON specification file. The assigned UUID is printed on success.
//
// Usage example:
//
//	hookwatch register --file ./hook.json
func registerHookCommand(hr hookregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "register",
		Description: "Register a chainhook from a JSON specification file.",
		Usage:       "Validates and persists a chainhook specification. A missing uuid field is generated.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the JSON chainhook specification",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}

			var spec hookeval.Specification
			if err := json.Unmarshal(data, &spec); err != nil {
				return err
			}

			registered, err := hr.Register(ctx, spec)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Writer, registered.UUID)
			return nil
		},
	}
}

// deregisterHookCommand returns a CLI command that removes a registered
// chainhook by UUID.
//
// Usage example:
//
//	hookwatch deregister --uuid 1b8c...
func deregisterHookCommand(hr hookregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "deregister",
		Description: "Remove a registered chainhook.",
		Usage:       "Deletes the chainhook stored under the given UUID.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "uuid",
				Usage:    "UUID of the chainhook to remove",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return hr.Deregister(ctx, c.String("uuid"))
		},
	}
}

// listHooksCommand returns a CLI command that prints every registered
// chainhook as JSON, one specification per line.
//
// Usage example:
//
//	hookwatch list
func listHooksCommand(hr hookregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "list",
		Description: "List every registered chainhook.",
		Usage:       "Prints each registered chainhook specification as a JSON line.",
		Action: func(ctx context.Context, c *cli.Command) error {
			hooks, err := hr.List(ctx)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(c.Writer)
			for _, hook := range hooks {
				if err := encoder.Encode(hook); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
