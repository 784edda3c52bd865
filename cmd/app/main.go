// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodesecrets/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "nodesecrets",
		Usage:   "Node authentication secrets service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "new-secret",
				Usage: "Generate a new random hex secret",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "size",
						Aliases: []string{"s"},
						Value:   32,
						Usage:   "Secret length in hex characters",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunNewSecret(commands.DefaultIO(), int(cmd.Int("size")))
				},
			},
			{
				Name:  "derive-secret",
				Usage: "Derive the per-node secret for a master secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "master",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Hex-encoded master secret",
					},
					&cli.StringFlag{
						Name:     "node",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Node identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDeriveSecret(
						commands.DefaultIO(),
						cmd.String("master"),
						cmd.String("node"),
					)
				},
			},
			{
				Name:  "add-secret",
				Usage: "Add a freshly generated secret for a node to a secrets file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Secrets file path (created if missing)",
					},
					&cli.StringFlag{
						Name:     "node",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Node identifier",
					},
					&cli.IntFlag{
						Name:    "size",
						Aliases: []string{"s"},
						Value:   0,
						Usage:   "Secret length in hex characters (0 uses the default)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAddSecret(
						commands.DefaultIO(),
						cmd.String("file"),
						cmd.String("node"),
						int(cmd.Int("size")),
					)
				},
			},
			{
				Name:  "list-nodes",
				Usage: "List the nodes registered in one or more secrets files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Secrets file path (repeatable)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListNodes(commands.DefaultIO(), cmd.StringSlice("file"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
