package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "crate",
		Commands: runner.register(),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("Output", func(t *testing.T) {
		t.Run("writeJSON surfaces write failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			err := runner.writeJSON(map[string]string{"status": "ok"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected a write error, got %v", err)
			}
		})

		t.Run("writePlain surfaces write failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("hello"); err == nil {
				t.Error("expected a write error")
			}
		})
	})

	t.Run("Init", func(t *testing.T) {
		t.Run("creates config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := newTestApp(runner).Run(context.Background(), []string{"crate", "init", "--config", path})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			tu.AssertFileExists(t, path)
			if !strings.Contains(output.String(), "Created") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("refuses to overwrite", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			tu.MustWriteFile(t, path, []byte("existing"))

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			err := newTestApp(runner).Run(context.Background(), []string{"crate", "init", "--config", path})
			if err == nil {
				t.Error("expected an error for existing config file")
			}
		})
	})

	t.Run("Export", func(t *testing.T) {
		t.Run("writes liked songs CSV", func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "playlists")
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Spotify: &tu.MockService{}, Output: output})

			err := newTestApp(runner).Run(context.Background(),
				[]string{"crate", "export", "--output", outDir})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			tu.AssertFileExists(t, filepath.Join(outDir, "Liked_Songs.csv"))
			if !strings.Contains(output.String(), "Mock User") {
				t.Errorf("expected summary to name the user, got %q", output.String())
			}
		})

		t.Run("fails without a service", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			err := newTestApp(runner).Run(context.Background(), []string{"crate", "export"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Download", func(t *testing.T) {
		t.Run("fails when no CSVs exist", func(t *testing.T) {
			dir := t.TempDir()
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := newTestApp(runner).Run(context.Background(),
				[]string{"crate", "download", "--playlists-dir", dir})
			if !errors.Is(err, shared.ErrNoExports) {
				t.Errorf("expected ErrNoExports, got %v", err)
			}
		})

		t.Run("fails when playlists directory is missing", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := newTestApp(runner).Run(context.Background(),
				[]string{"crate", "download", "--playlists-dir", filepath.Join(t.TempDir(), "nope")})
			if err == nil {
				t.Error("expected an error for missing directory")
			}
		})
	})

	t.Run("History", func(t *testing.T) {
		t.Run("empty database lists nothing", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := newTestApp(runner).Run(context.Background(),
				[]string{"crate", "history", "--db", filepath.Join(t.TempDir(), "crate.db")})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "No download runs") {
				t.Errorf("unexpected output %q", output.String())
			}
		})
	})

	t.Run("ListCSVs", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"b.csv", "a.csv", "notes.txt", "Liked_Songs.csv", "MIX.CSV"} {
			tu.MustWriteFile(t, filepath.Join(dir, name), []byte("x"))
		}

		files, err := listCSVs(dir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"Liked_Songs.csv", "MIX.CSV", "a.csv", "b.csv"}
		if len(files) != len(want) {
			t.Fatalf("expected %d files, got %d", len(want), len(files))
		}
		for i := range want {
			if files[i] != want[i] {
				t.Errorf("expected %q at %d, got %q", want[i], i, files[i])
			}
		}
	})

	t.Run("PlaylistName", func(t *testing.T) {
		tc := map[string]string{
			"Road_Trip.csv":   "Road_Trip",
			"MIX.CSV":         "MIX",
			"Liked_Songs.Csv": "Liked_Songs",
		}
		for file, want := range tc {
			if got := playlistName(file); got != want {
				t.Errorf("playlistName(%q) = %q, want %q", file, got, want)
			}
		}
	})
}
