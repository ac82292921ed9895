package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/fetch"
)

type updateMsg fetch.ProgressUpdate

type finishedMsg struct{}

// DownloadModel renders live progress for a download run. It consumes
// ProgressUpdate values from the pipeline's channel; the run finishes when
// the producer closes the channel.
type DownloadModel struct {
	updates <-chan fetch.ProgressUpdate
	bar     progress.Model
	spin    spinner.Model
	current fetch.ProgressUpdate
	counts  map[fetch.Outcome]int
	rows    int
	done    bool
	width   int
}

// NewDownloadModel creates a progress view fed by updates.
func NewDownloadModel(updates <-chan fetch.ProgressUpdate) *DownloadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Title

	return &DownloadModel{
		updates: updates,
		bar:     progress.New(progress.WithDefaultGradient()),
		spin:    s,
		counts:  map[fetch.Outcome]int{},
	}
}

func (m *DownloadModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForUpdate())
}

func (m *DownloadModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return finishedMsg{}
		}
		return updateMsg(update)
	}
}

func (m *DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case updateMsg:
		m.current = fetch.ProgressUpdate(msg)
		m.counts[m.current.Outcome]++
		m.rows++
		return m, m.waitForUpdate()

	case finishedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *DownloadModel) View() string {
	var b strings.Builder

	b.WriteString(Styles.Title.Render("Downloading tracks"))
	b.WriteString("\n")

	if m.done {
		b.WriteString(Styles.Ok.Render("Run complete"))
		b.WriteString("\n")
	} else if m.current.Total > 0 {
		b.WriteString(fmt.Sprintf("%s %s • %s (%d/%d)\n",
			m.spin.View(),
			m.current.Playlist,
			m.current.Track,
			m.current.Step,
			m.current.Total,
		))
		b.WriteString(m.bar.ViewAs(float64(m.current.Step)/float64(m.current.Total)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.spin.View() + " starting...\n")
	}

	b.WriteString("\n")
	b.WriteString(renderCounts(m.counts))
	b.WriteString("\n")
	b.WriteString(Styles.Dim.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

func renderCounts(counts map[fetch.Outcome]int) string {
	parts := []string{
		Styles.Ok.Render(fmt.Sprintf("%d tagged", counts[fetch.OutcomeTagged])),
		Styles.Dim.Render(fmt.Sprintf("%d skipped", counts[fetch.OutcomeSkipped])),
		Styles.Warn.Render(fmt.Sprintf("%d untagged", counts[fetch.OutcomeTaggingSkipped])),
		Styles.Err.Render(fmt.Sprintf("%d failed", counts[fetch.OutcomeDownloadFailed])),
	}
	return strings.Join(parts, "  ")
}

// Summary renders a one-line colored tally of a finished run for plain
// console output.
func Summary(results []fetch.TrackResult) string {
	counts := map[fetch.Outcome]int{}
	for _, res := range results {
		counts[res.Outcome]++
	}
	return renderCounts(counts)
}
