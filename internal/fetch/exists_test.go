package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubstringChecker(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Bohemian Rhapsody - Queen.mp3",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
	}

	checker := NewSubstringChecker(dir)

	tests := []struct {
		name   string
		track  string
		artist string
		want   bool
	}{
		{"Exact Track And Artist", "Bohemian Rhapsody", "Queen", true},
		{"Case Insensitive", "bohemian rhapsody", "QUEEN", true},
		{"Substring False Positive", "Bohemian", "Queen", true},
		{"Track Matches Artist Does Not", "Rhapsody", "Panic", false},
		{"Neither Matches", "Yellow", "Coldplay", false},
		{"Non Audio File Ignored", "notes", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := checker.Exists(tc.track, tc.artist)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("Exists(%q, %q) = %v, want %v", tc.track, tc.artist, got, tc.want)
			}
		})
	}

	t.Run("Missing Directory", func(t *testing.T) {
		checker := NewSubstringChecker(filepath.Join(dir, "nope"))
		got, err := checker.Exists("Anything", "Anyone")
		if err != nil {
			t.Fatalf("expected no error for missing directory, got %v", err)
		}
		if got {
			t.Error("expected false for missing directory")
		}
	})

	t.Run("Sees Files Added Mid Run", func(t *testing.T) {
		path := filepath.Join(dir, "Yellow - Coldplay.mp3")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		got, err := checker.Exists("Yellow", "Coldplay")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got {
			t.Error("expected newly added file to be found")
		}
	})
}
