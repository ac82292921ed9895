package fetch

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".opus": true,
	".ogg":  true,
	".flac": true,
	".wav":  true,
	".webm": true,
}

func isAudioFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	return audioExtensions[strings.ToLower(name[idx:])]
}

// ExistenceChecker decides whether a {track, artist} candidate already has
// an audio file on disk.
type ExistenceChecker interface {
	Exists(track, artist string) (bool, error)
}

// SubstringChecker reports a candidate as existing when any audio filename
// in the directory contains both the lowercased track name and the
// lowercased artist name. The match is a heuristic: "Bohemian" by "Queen"
// matches "Bohemian Rhapsody - Queen.mp3" too. Filenames produced by the
// download engine come from the result's own title, so an exact match is
// not possible here.
type SubstringChecker struct {
	dir string
}

// NewSubstringChecker creates a checker scanning dir on every call. The
// directory is re-listed per candidate so files downloaded earlier in the
// same run are seen.
func NewSubstringChecker(dir string) *SubstringChecker {
	return &SubstringChecker{dir: dir}
}

// Exists reports whether a matching audio file is present. A missing
// directory means nothing exists yet and is not an error.
func (c *SubstringChecker) Exists(track, artist string) (bool, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	track = strings.ToLower(track)
	artist = strings.ToLower(artist)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !isAudioFile(name) {
			continue
		}
		if strings.Contains(name, track) && strings.Contains(name, artist) {
			return true, nil
		}
	}

	return false, nil
}
