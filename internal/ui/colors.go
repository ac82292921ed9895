// Package ui renders terminal output for download runs: a lipgloss
// palette for plain console summaries and a bubbletea progress view.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	Title lipgloss.Style
	Ok    lipgloss.Style
	Err   lipgloss.Style
	Warn  lipgloss.Style
	Dim   lipgloss.Style
}

// Styles is the default palette shared by the CLI and the TUI.
var Styles = NewPalette("#7D56F4", "#04B575", "#FF5F56", "#FFA500", "#626262")

func NewPalette(title, ok, err, warn, dim string) *Palette {
	return &Palette{
		Title: bold(title).MarginBottom(1),
		Ok:    bold(ok),
		Err:   bold(err),
		Warn:  fg(warn),
		Dim:   fg(dim).Italic(true),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
