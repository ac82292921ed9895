// package session writes the append-only per-run log file consumed by
// humans after a download pass. It is never read back, rotated, or
// deleted by the program.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// Logger appends timestamped event lines to log/download_{timestamp}.log.
type Logger struct {
	file *os.File
	path string
}

// NewLogger creates the log directory when needed and opens a new
// run-scoped file named from the current time.
func NewLogger(logDir string) (*Logger, error) {
	if logDir == "" {
		logDir = "log"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("download_%s.log", shared.RunStamp(time.Now())))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	return &Logger{file: file, path: path}, nil
}

// Path returns the session log file location.
func (l *Logger) Path() string { return l.path }

// Event appends one "{timestamp} - {message}" line. Write failures are
// swallowed; the session log is best-effort and never interrupts a run.
func (l *Logger) Event(message string) {
	if l == nil || l.file == nil {
		return
	}
	fmt.Fprintf(l.file, "%s - %s\n", time.Now().Format(time.RFC3339), message)
}

// Start writes the session-open banner.
func (l *Logger) Start(runID string) {
	l.Event(fmt.Sprintf("Download session %s started", runID))
}

// Finish writes the session-close banner and closes the file.
func (l *Logger) Finish(runID string) error {
	l.Event(fmt.Sprintf("Download session %s finished", runID))
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
