package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/fetch"
	"github.com/desertthunder/crate/internal/history"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tracks"
	"github.com/desertthunder/crate/internal/ui"
	"github.com/urfave/cli/v3"
)

// Download runs the fetch-and-tag pass over every CSV in the playlists
// directory, in sorted filename order. An empty playlists directory is
// fatal; everything after that is per-track.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	config := r.configFrom(cmd)

	playlistsDir := cmd.String("playlists-dir")
	if playlistsDir == "" {
		playlistsDir = config.Download.PlaylistsDir
	}
	outputDir := cmd.String("output-dir")
	if outputDir == "" {
		outputDir = config.Download.OutputDir
	}
	logDir := cmd.String("log-dir")
	if logDir == "" {
		logDir = config.Download.LogDir
	}
	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = config.Database.Path
	}

	files, err := listCSVs(playlistsDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no CSV files in %s, run: crate export", shared.ErrNoExports, playlistsDir)
	}

	sess, err := session.NewLogger(logDir)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	started := time.Now()
	sess.Start(runID)
	r.logger.Infof("download run %s started, session log at %s", runID, sess.Path())

	pipeline := fetch.NewPipeline(fetch.PipelineOpts{
		OutDir: outputDir,
		Events: sess,
		Logger: r.logger,
	})

	var results []fetch.TrackResult
	if cmd.Bool("ui") {
		results = r.runWithUI(ctx, pipeline, sess, playlistsDir, files)
	} else {
		results = r.runPlain(ctx, pipeline, sess, playlistsDir, files)
	}

	if err := sess.Finish(runID); err != nil {
		r.logger.Warnf("failed to close session log: %v", err)
	}

	r.recordHistory(dbPath, history.Run{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Playlists:  len(files),
		Tracks:     len(results),
	}, results)

	r.writePlainln("Run %s complete: %s", runID, ui.Summary(results))
	return nil
}

func (r *Runner) runPlain(ctx context.Context, pipeline *fetch.Pipeline, sess *session.Logger, dir string, files []string) []fetch.TrackResult {
	var results []fetch.TrackResult
	for _, file := range files {
		rows := r.readPlaylist(filepath.Join(dir, file), sess)
		name := playlistName(file)
		r.logger.Infof("processing %s (%d tracks)", name, len(rows))
		results = append(results, pipeline.Run(ctx, name, rows, nil)...)
	}
	return results
}

// runWithUI drives the pipeline in a goroutine while a bubbletea program
// consumes its progress channel.
func (r *Runner) runWithUI(ctx context.Context, pipeline *fetch.Pipeline, sess *session.Logger, dir string, files []string) []fetch.TrackResult {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan fetch.ProgressUpdate)
	var results []fetch.TrackResult

	go func() {
		defer close(progress)
		for _, file := range files {
			rows := r.readPlaylist(filepath.Join(dir, file), sess)
			results = append(results, pipeline.Run(runCtx, playlistName(file), rows, progress)...)
		}
	}()

	if _, err := tea.NewProgram(ui.NewDownloadModel(progress)).Run(); err != nil {
		r.logger.Warnf("progress view failed: %v", err)
	}

	// The view may quit before the run finishes. Cancel and drain so the
	// producer goroutine can exit.
	cancel()
	for range progress {
	}

	return results
}

func (r *Runner) readPlaylist(path string, sess *session.Logger) []tracks.Row {
	rows, err := tracks.ReadCSV(path, func(line int, reason string) {
		msg := fmt.Sprintf("Skipped row %d of %s: %s", line, filepath.Base(path), reason)
		r.logger.Warn(msg)
		sess.Event(msg)
	})
	if err != nil {
		msg := fmt.Sprintf("Skipped %s: %v", filepath.Base(path), err)
		r.logger.Error(msg)
		sess.Event(msg)
		return nil
	}
	return rows
}

// recordHistory persists the run's outcomes. History is a convenience, so
// database problems are warnings rather than run failures.
func (r *Runner) recordHistory(dbPath string, run history.Run, results []fetch.TrackResult) {
	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		r.logger.Warnf("failed to open history database: %v", err)
		return
	}
	defer db.Close()

	store, err := history.NewStore(db)
	if err != nil {
		r.logger.Warnf("failed to initialize history store: %v", err)
		return
	}

	if err := store.RecordRun(run, results); err != nil {
		r.logger.Warnf("failed to record run history: %v", err)
	}
}

// playlistName strips the extension from a CSV filename. listCSVs accepts
// any casing of .csv, so the trim has to match.
func playlistName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// listCSVs returns CSV filenames in dir. os.ReadDir sorts by name, which
// fixes the processing order.
func listCSVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlists directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}
