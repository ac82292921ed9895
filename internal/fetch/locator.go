package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// ResultLocator identifies the file a download produced. The engine names
// files after the result's title, so no handle ties a download to a path.
type ResultLocator interface {
	Locate(dir string, since time.Time) (string, error)
}

// MTimeLocator picks the newest audio file whose modification time is
// strictly after the instant captured before the download started. Zero
// new files, multiple new files, or a concurrent writer can misidentify
// the result; that is an accepted limit of the strategy.
type MTimeLocator struct{}

func (MTimeLocator) Locate(dir string, since time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	var newest string
	var newestAt time.Time

	for _, entry := range entries {
		if entry.IsDir() || !isAudioFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if !mod.After(since) {
			continue
		}
		if newest == "" || mod.After(newestAt) {
			newest = entry.Name()
			newestAt = mod
		}
	}

	if newest == "" {
		return "", shared.ErrNoFileProduced
	}

	return filepath.Join(dir, newest), nil
}
