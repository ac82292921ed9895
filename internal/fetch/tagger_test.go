package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/desertthunder/crate/internal/tracks"
)

func TestYearFromReleaseDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"Full Date", "1991-11-05", "1991"},
		{"Year Only", "1991", "1991"},
		{"Empty", "", ""},
		{"Non Numeric", "unknown", ""},
		{"Leading Digits Only", "2003ish", "2003"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := YearFromReleaseDate(tc.date); got != tc.want {
				t.Errorf("YearFromReleaseDate(%q) = %q, want %q", tc.date, got, tc.want)
			}
		})
	}
}

func TestTagger(t *testing.T) {
	newAudioFile := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "track.mp3")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("failed to create audio file: %v", err)
		}
		return path
	}

	t.Run("Writes Text Frames", func(t *testing.T) {
		path := newAudioFile(t)
		row := tracks.Row{
			TrackName:        "Bohemian Rhapsody",
			ArtistNames:      "Queen",
			AlbumName:        "A Night at the Opera",
			AlbumReleaseDate: "1975-11-21",
		}

		if err := (Tagger{}).Tag(path, row, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("failed to reopen tag: %v", err)
		}
		defer tag.Close()

		if tag.Title() != "Bohemian Rhapsody" {
			t.Errorf("unexpected title %q", tag.Title())
		}
		if tag.Artist() != "Queen" {
			t.Errorf("unexpected artist %q", tag.Artist())
		}
		if tag.Album() != "A Night at the Opera" {
			t.Errorf("unexpected album %q", tag.Album())
		}
		if year := tag.GetTextFrame("TYER").Text; year != "1975" {
			t.Errorf("unexpected year %q", year)
		}
	})

	t.Run("Omits Album And Year When Absent", func(t *testing.T) {
		path := newAudioFile(t)
		row := tracks.Row{
			TrackName:        "Untitled",
			ArtistNames:      "Unknown Artist",
			AlbumReleaseDate: "unknown",
		}

		if err := (Tagger{}).Tag(path, row, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("failed to reopen tag: %v", err)
		}
		defer tag.Close()

		if tag.Album() != "" {
			t.Errorf("expected no album, got %q", tag.Album())
		}
		if year := tag.GetTextFrame("TYER").Text; year != "" {
			t.Errorf("expected no year, got %q", year)
		}
	})

	t.Run("Embeds Front Cover", func(t *testing.T) {
		path := newAudioFile(t)
		artPath := filepath.Join(t.TempDir(), "art.jpg")
		if err := os.WriteFile(artPath, []byte("jpeg-bytes"), 0644); err != nil {
			t.Fatalf("failed to write art: %v", err)
		}

		row := tracks.Row{TrackName: "Song", ArtistNames: "Artist"}
		if err := (Tagger{}).Tag(path, row, artPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("failed to reopen tag: %v", err)
		}
		defer tag.Close()

		frames := tag.GetFrames(tag.CommonID("Attached picture"))
		if len(frames) != 1 {
			t.Fatalf("expected 1 picture frame, got %d", len(frames))
		}
		pic, ok := frames[0].(id3v2.PictureFrame)
		if !ok {
			t.Fatal("expected a PictureFrame")
		}
		if pic.PictureType != id3v2.PTFrontCover {
			t.Errorf("expected front cover, got type %d", pic.PictureType)
		}
		if string(pic.Picture) != "jpeg-bytes" {
			t.Error("picture bytes were not embedded")
		}
	})

	t.Run("Missing Artwork File Fails", func(t *testing.T) {
		path := newAudioFile(t)
		row := tracks.Row{TrackName: "Song", ArtistNames: "Artist"}
		if err := (Tagger{}).Tag(path, row, "/nonexistent/art.jpg"); err == nil {
			t.Error("expected an error for missing artwork file")
		}
	})
}
