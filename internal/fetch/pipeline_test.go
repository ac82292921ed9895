package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/desertthunder/crate/internal/tracks"
)

// fakeEngine writes a fixed file into outDir with a future mtime, or fails.
type fakeEngine struct {
	filename string
	err      error
	calls    int
}

func (f *fakeEngine) Download(ctx context.Context, track, artist, outDir string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.filename == "" {
		return nil
	}
	path := filepath.Join(outDir, f.filename)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return err
	}
	// Push the mtime forward so the locator's strictly-after check is
	// deterministic regardless of filesystem timestamp granularity.
	future := time.Now().Add(time.Minute)
	return os.Chtimes(path, future, future)
}

type memEvents struct {
	lines []string
}

func (m *memEvents) Event(message string) { m.lines = append(m.lines, message) }

func TestPipelineRun(t *testing.T) {
	artSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 8, 8))
	}))
	defer artSrv.Close()

	newPipeline := func(outDir string, engine SearchDownloader, events EventLog) *Pipeline {
		return NewPipeline(PipelineOpts{
			OutDir: outDir,
			Engine: engine,
			Events: events,
		})
	}

	t.Run("Tagged End To End", func(t *testing.T) {
		outDir := t.TempDir()
		engine := &fakeEngine{filename: "Bohemian Rhapsody (Official Audio).mp3"}
		events := &memEvents{}

		row := tracks.Row{
			TrackName:        "Bohemian Rhapsody",
			ArtistNames:      "Queen",
			AlbumName:        "A Night at the Opera",
			AlbumReleaseDate: "1975-11-21",
			AlbumImageURL:    artSrv.URL,
		}

		progress := make(chan ProgressUpdate, 1)
		results := newPipeline(outDir, engine, events).Run(context.Background(), "Mix", []tracks.Row{row}, progress)
		close(progress)

		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		res := results[0]
		if res.Outcome != OutcomeTagged {
			t.Fatalf("expected tagged, got %s (%s)", res.Outcome, res.Message)
		}
		if res.Playlist != "Mix" {
			t.Errorf("unexpected playlist %q", res.Playlist)
		}

		tag, err := id3v2.Open(res.Path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("failed to open tagged file: %v", err)
		}
		defer tag.Close()
		if tag.Title() != "Bohemian Rhapsody" {
			t.Errorf("unexpected title %q", tag.Title())
		}
		if year := tag.GetTextFrame("TYER").Text; year != "1975" {
			t.Errorf("unexpected year %q", year)
		}
		if frames := tag.GetFrames(tag.CommonID("Attached picture")); len(frames) != 1 {
			t.Errorf("expected embedded artwork, got %d picture frames", len(frames))
		}

		update := <-progress
		if update.Step != 1 || update.Total != 1 || update.Outcome != OutcomeTagged {
			t.Errorf("unexpected progress update %+v", update)
		}
		if len(events.lines) != 1 {
			t.Errorf("expected 1 event line, got %d", len(events.lines))
		}
	})

	t.Run("Artwork Failure Still Tags", func(t *testing.T) {
		deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer deadSrv.Close()

		outDir := t.TempDir()
		engine := &fakeEngine{filename: "Yellow.mp3"}
		row := tracks.Row{TrackName: "Yellow", ArtistNames: "Coldplay", AlbumImageURL: deadSrv.URL}

		results := newPipeline(outDir, engine, nil).Run(context.Background(), "Mix", []tracks.Row{row}, nil)
		if results[0].Outcome != OutcomeTagged {
			t.Errorf("expected tagged despite art failure, got %s", results[0].Outcome)
		}

		tag, err := id3v2.Open(results[0].Path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("failed to open tagged file: %v", err)
		}
		defer tag.Close()
		if frames := tag.GetFrames(tag.CommonID("Attached picture")); len(frames) != 0 {
			t.Errorf("expected no artwork, got %d picture frames", len(frames))
		}
	})

	t.Run("Existing File Is Skipped", func(t *testing.T) {
		outDir := t.TempDir()
		seed := filepath.Join(outDir, "Bohemian Rhapsody - Queen.mp3")
		if err := os.WriteFile(seed, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		engine := &fakeEngine{filename: "unused.mp3"}
		row := tracks.Row{TrackName: "Bohemian Rhapsody", ArtistNames: "Queen"}

		results := newPipeline(outDir, engine, nil).Run(context.Background(), "Mix", []tracks.Row{row}, nil)
		if results[0].Outcome != OutcomeSkipped {
			t.Errorf("expected skipped, got %s", results[0].Outcome)
		}
		if engine.calls != 0 {
			t.Errorf("expected no download attempt, got %d", engine.calls)
		}
	})

	t.Run("Engine Failure Continues To Next Row", func(t *testing.T) {
		outDir := t.TempDir()
		failing := &failThenWrite{fail: 1, filename: "Second Song.mp3"}

		rows := []tracks.Row{
			{TrackName: "First", ArtistNames: "One"},
			{TrackName: "Second", ArtistNames: "Two"},
		}

		results := newPipeline(outDir, failing, nil).Run(context.Background(), "Mix", rows, nil)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Outcome != OutcomeDownloadFailed {
			t.Errorf("expected first row to fail, got %s", results[0].Outcome)
		}
		if results[0].Message == "" {
			t.Error("expected a failure message")
		}
		if results[1].Outcome != OutcomeTagged {
			t.Errorf("expected second row tagged, got %s", results[1].Outcome)
		}
	})

	t.Run("No File Produced Means Tagging Skipped", func(t *testing.T) {
		outDir := t.TempDir()
		engine := &fakeEngine{} // succeeds but writes nothing

		row := tracks.Row{TrackName: "Ghost", ArtistNames: "Nobody"}
		results := newPipeline(outDir, engine, nil).Run(context.Background(), "Mix", []tracks.Row{row}, nil)
		if results[0].Outcome != OutcomeTaggingSkipped {
			t.Errorf("expected tagging skipped, got %s", results[0].Outcome)
		}
	})
}

// failThenWrite fails the first n downloads, then behaves like fakeEngine.
type failThenWrite struct {
	fail     int
	filename string
	calls    int
}

func (f *failThenWrite) Download(ctx context.Context, track, artist, outDir string) error {
	f.calls++
	if f.calls <= f.fail {
		return errors.New("search produced no results")
	}
	path := filepath.Join(outDir, f.filename)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return err
	}
	future := time.Now().Add(time.Minute)
	return os.Chtimes(path, future, future)
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomePending, "pending"},
		{OutcomeSkipped, "skipped"},
		{OutcomeTagged, "tagged"},
		{OutcomeTaggingSkipped, "tagging_skipped"},
		{OutcomeDownloadFailed, "download_failed"},
		{Outcome(99), ""},
	}
	for _, tc := range tests {
		if got := tc.outcome.String(); got != tc.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tc.outcome, got, tc.want)
		}
	}
}
