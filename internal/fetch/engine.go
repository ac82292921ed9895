package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
)

// SearchDownloader performs a single best-effort search for a track and
// downloads the top result into outDir. The produced filename comes from
// the result's own title, so implementations make no promise about the
// path; callers correlate via a ResultLocator.
type SearchDownloader interface {
	Download(ctx context.Context, track, artist, outDir string) error
}

// YTDLP shells out to the yt-dlp binary. The search is ytsearch1 (top
// result only, no candidate ranking), best available audio transcoded to
// mp3 at 320K.
type YTDLP struct {
	binary string
	logger *log.Logger
}

// NewYTDLP creates a downloader using the yt-dlp binary on PATH.
func NewYTDLP(logger *log.Logger) *YTDLP {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &YTDLP{binary: "yt-dlp", logger: logger}
}

func (y *YTDLP) Download(ctx context.Context, track, artist, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	query := fmt.Sprintf("ytsearch1:%s %s audio", track, artist)
	args := []string{
		"--format", "bestaudio",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "320K",
		"--quiet",
		"--no-warnings",
		"--output", filepath.Join(outDir, "%(title)s.%(ext)s"),
		query,
	}

	y.logger.Debugf("running %s %s", y.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, y.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: %s", shared.ErrEngineFailed, detail)
	}

	return nil
}
