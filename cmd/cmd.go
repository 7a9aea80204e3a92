// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func callbackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "callback-addr",
			Usage: "Capture the authorization redirect on this local address instead of pasting it",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the authorization URL in the browser",
		},
	}
}

// mixCommand runs the whole workflow without the TUI
func mixCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mix",
		Usage: "Build a mix from a playlist or a seed artist",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "auth",
				Usage: "Authorization mode: user or client (default from config)",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Track source: playlist or recs",
				Value:   "playlist",
			},
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Playlist ID/URL, or artist name for recs",
				Required: true,
			},
			&cli.FloatFlag{
				Name:    "minutes",
				Aliases: []string{"m"},
				Usage:   "Target mix length in minutes (default from config)",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"o"},
				Usage:   "Write the mix as text to this path (default from config)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the mix as a Spotify playlist (user mode only)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the mix as JSON",
			},
		}, callbackFlags()...),
		Action: r.Mix,
	}
}

// apiCommand handles direct backend API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the mix backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file from the bundled template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles backend authorization operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage user authorization",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:   "login",
				Usage:  "Authorize as a user and hand the redirect to the backend",
				Flags:  callbackFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Check whether the backend holds a user token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// historyCommand handles persisted mixes
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Browse and export previously built mixes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List mixes, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of mixes to list",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Only mixes from this source (playlist or recs)",
					},
					&cli.BoolFlag{
						Name:  "saved",
						Usage: "Only mixes saved as playlists",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one mix by number",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "number"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export one mix to a file",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "number"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: txt, csv, markdown or json",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (base name for csv)",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "delete",
				Usage: "Remove one mix from the history",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "number"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive mix builder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "callback-addr",
				Usage: "Capture the authorization redirect on this local address (default from config)",
			},
		},
		Action: r.TUI,
	}
}
