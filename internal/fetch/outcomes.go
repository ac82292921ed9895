// package fetch implements the download pass: for each track row, decide
// whether it already exists on disk, otherwise search and download it,
// identify the produced file, and write ID3 tags with optional cover art.
package fetch

// Outcome is the terminal state of one track after the pipeline ran it.
//
// Every row ends in exactly one outcome; per-track failures are values,
// not errors, so a bad row never stops the run.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSkipped
	OutcomeTagged
	OutcomeTaggingSkipped
	OutcomeDownloadFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTagged:
		return "tagged"
	case OutcomeTaggingSkipped:
		return "tagging_skipped"
	case OutcomeDownloadFailed:
		return "download_failed"
	default:
		return ""
	}
}

// TrackResult records what happened to one row.
type TrackResult struct {
	Playlist string
	Track    string
	Artist   string
	Outcome  Outcome
	Path     string // located audio file, when one was identified
	Message  string // warning or error detail, empty on a clean outcome
}

// ProgressUpdate represents a progress event during a download run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Playlist string
	Step     int // 1-based row index within the playlist
	Total    int
	Track    string
	Outcome  Outcome
	Message  string
}

// EventLog receives one human-readable line per pipeline event. The
// session logger implements it; a nil log disables event recording.
type EventLog interface {
	Event(message string)
}
