package shared

import (
	"errors"
	"testing"
	"time"
)

func TestRunStamp(t *testing.T) {
	tc := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "date and time",
			in:   time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
			want: "20240309_140507",
		},
		{
			name: "midnight",
			in:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "20240101_000000",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := RunStamp(tt.in)
			if got != tt.want {
				t.Errorf("RunStamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDatabase(t *testing.T) {
	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := NewDatabase("")
		if !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("in-memory database opens", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		db.Close()
	})
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected distinct IDs")
	}
}
