package main

import (
	"context"

	"github.com/desertthunder/crate/internal/history"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/ui"
	"github.com/urfave/cli/v3"
)

// History lists recorded download runs, or the per-track outcomes of one
// run when --run is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.configFrom(cmd)

	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = config.Database.Path
	}

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := history.NewStore(db)
	if err != nil {
		return err
	}

	if runID := cmd.String("run"); runID != "" {
		return r.historyOutcomes(store, runID, cmd.Bool("json"))
	}

	return r.historyRuns(store, int(cmd.Int("limit")), cmd.Bool("json"))
}

func (r *Runner) historyRuns(store *history.Store, limit int, useJSON bool) error {
	runs, err := store.Runs(limit)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No download runs recorded yet\n")
	}

	r.writePlain("Found %d runs:\n\n", len(runs))
	for _, run := range runs {
		summary, err := store.Summary(run.ID)
		if err != nil {
			return err
		}
		r.writePlain("%s  %s  %d playlists, %d tracks\n",
			run.StartedAt.Format("2006-01-02 15:04"), run.ID, run.Playlists, run.Tracks)
		r.writePlain("  %s%d tagged, %d skipped, %d untagged, %d failed\n",
			"", summary["tagged"], summary["skipped"], summary["tagging_skipped"], summary["download_failed"])
	}

	return nil
}

func (r *Runner) historyOutcomes(store *history.Store, runID string, useJSON bool) error {
	outcomes, err := store.Outcomes(runID)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(outcomes, true)
	}

	if len(outcomes) == 0 {
		return r.writePlain("No outcomes recorded for run %s\n", runID)
	}

	for _, row := range outcomes {
		line := row.Track + " by " + row.Artist
		switch row.Outcome {
		case "tagged":
			r.writePlain("%s %s\n", ui.Styles.Ok.Render("✓"), line)
		case "download_failed":
			r.writePlain("%s %s: %s\n", ui.Styles.Err.Render("✗"), line, row.Message)
		case "tagging_skipped":
			r.writePlain("%s %s (untagged)\n", ui.Styles.Warn.Render("~"), line)
		default:
			r.writePlain("%s %s (skipped)\n", ui.Styles.Dim.Render("-"), line)
		}
	}

	return nil
}
