// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func deckFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "deck",
		Aliases: []string{"d"},
		Usage:   "Path to a deck TOML file (default: built-in deck)",
	}
}

// presentCommand launches the interactive presenter.
func presentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "present",
		Aliases: []string{"tui", "ui"},
		Usage:   "Present the deck in the terminal",
		Flags: []cli.Flag{
			deckFlag(),
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Reload the deck when its file changes",
			},
			&cli.StringFlag{
				Name:  "serve",
				Usage: "Also serve the deck and stream slide changes to followers on this address (e.g. :3000)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Format written by the export key (pdf, html, svg, png, md, txt)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path for exports, without extension",
			},
		},
		Action: r.Present,
	}
}

// exportCommand writes the deck to disk.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the deck, one page per slide",
		Flags: []cli.Flag{
			deckFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (pdf, html, svg, png, md, txt)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path, without extension",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up on PDF printing after this long",
				Value: time.Minute,
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the first exported file",
			},
		},
		Action: r.Export,
	}
}

// printCommand renders every slide to stdout.
func printCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "Print every slide to the terminal",
		Flags: []cli.Flag{
			deckFlag(),
			&cli.StringFlag{
				Name:  "style",
				Usage: "Markdown style (dark, light, notty, auto)",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Wrap width (default: terminal width)",
			},
		},
		Action: r.Print,
	}
}

// serveCommand serves the deck over HTTP.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the deck as print-ready HTML with a progress API",
		Flags: []cli.Flag{
			deckFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address (default: server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// progressCommand manages saved progress and session history.
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Inspect saved progress and presenting sessions",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the saved slide",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProgressShow,
			},
			{
				Name:   "reset",
				Usage:  "Forget the saved slide so the next run starts at slide 1",
				Action: r.ProgressReset,
			},
			{
				Name:  "history",
				Usage: "List recent presenting sessions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of sessions to list",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProgressHistory,
			},
			{
				Name:  "delete",
				Usage: "Delete a session from the history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ProgressDelete,
			},
			{
				Name:   "purge",
				Usage:  "Clear the session history",
				Action: r.ProgressPurge,
			},
		},
	}
}

// setupCommand handles setup operations for the database, config and deck files.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with the defaults",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "deck",
				Usage: "Write the built-in deck to a TOML file for editing",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SetupDeck,
			},
		},
	}
}
