// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library operations",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "artists",
				Usage: "List followed Spotify artists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artists to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyArtists,
			},
			{
				Name:  "extract",
				Usage: "Snapshot followed artists and saved albums to the local database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Also write the snapshot to a JSON file",
					},
				},
				Action: r.SpotifyExtract,
			},
		},
	}
}

// lidarrCommand handles Lidarr inspection operations
func lidarrCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lidarr",
		Usage: "Inspect the configured Lidarr server",
		Commands: []*cli.Command{
			{
				Name:    "status",
				Aliases: []string{"test"},
				Usage:   "Check Lidarr connectivity and list profiles and root folders",
				Action:  r.LidarrStatus,
			},
			{
				Name:  "profiles",
				Usage: "List quality and metadata profiles",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LidarrProfiles,
			},
			{
				Name:  "rootfolders",
				Usage: "List root folders",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LidarrRootFolders,
			},
			{
				Name:  "artists",
				Usage: "List artists already in the library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LidarrArtists,
			},
		},
	}
}

// migrateCommand handles migration runs and their history
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate extracted artists into Lidarr",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a migration over the extracted snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.Int64Flag{
						Name:  "quality-profile",
						Usage: "Quality profile ID (overrides config)",
					},
					&cli.Int64Flag{
						Name:  "metadata-profile",
						Usage: "Metadata profile ID (overrides config)",
					},
					&cli.StringFlag{
						Name:  "root-folder",
						Usage: "Root folder path (overrides config)",
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Album monitoring policy (all, future, missing, existing, first, latest, none, savedAlbumsOnly)",
					},
					&cli.StringSliceFlag{
						Name:  "artists",
						Usage: "Only migrate the named artists (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "search-missing",
						Usage: "Trigger a search for missing albums after adding",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the run report to a file",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (text, json, csv, markdown)",
						Value: "text",
					},
				},
				Action: r.MigrateRun,
			},
			{
				Name:  "history",
				Usage: "List past migration runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				},
				Action: r.MigrateHistory,
			},
			{
				Name:  "outcomes",
				Usage: "Show per-artist outcomes for a past run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MigrateOutcomes,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a config file from the bundled template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// cacheCommand manages the extracted library snapshot
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local library snapshot",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show snapshot counts",
				Action: r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete the stored snapshot",
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive migration.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for artist migration",
		Action:  r.TUI,
	}
}
