package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/export"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export runs the metadata export: liked songs plus one CSV per playlist.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	config := r.configFrom(cmd)

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run: crate init", shared.ErrMissingCredentials)
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = config.Export.PlaylistsDir
	}

	rateLimit := cmd.Float("rate-limit")
	if rateLimit <= 0 {
		rateLimit = config.Export.RateLimit
	}

	exporter := export.NewExporter(r.spotify, r.logger, export.Opts{RateLimit: rateLimit})

	result, err := exporter.Run(ctx, outputDir)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("Exported %d playlists (%d tracks) for %s:\n\n", len(result.Files), result.TotalRows, result.User)
	for _, file := range result.Files {
		r.writePlain("  %s • %d tracks (%s)\n", file.PlaylistName, file.Rows, file.Path)
	}
	if result.Dropped > 0 {
		r.writePlain("\n%d items had no playable track and were dropped\n", result.Dropped)
	}
	for _, name := range result.Failed {
		r.writePlain("✗ failed to export %s\n", name)
	}

	return nil
}
