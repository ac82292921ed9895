// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// initCommand scaffolds a starter config file
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a starter config.toml",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Init,
	}
}

// authCommand runs the interactive OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// exportCommand writes one CSV per playlist
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"ex"},
		Usage:   "Export liked songs and every playlist to CSV files",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for exported CSVs",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Maximum API requests per second",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
		},
		Action: r.Export,
	}
}

// downloadCommand runs the fetch-and-tag pass over exported CSVs
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download and tag every track listed in the exported CSVs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "playlists-dir",
				Usage: "Directory holding exported CSVs",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for downloaded audio files",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Directory for session log files",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the run-history database",
			},
			&cli.BoolFlag{
				Name:  "ui",
				Usage: "Show a live progress view",
			},
		},
		Action: r.Download,
	}
}

// historyCommand inspects recorded download runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past download runs and their outcomes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the run-history database",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show per-track outcomes for one run ID",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
