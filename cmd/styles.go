package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for terminal reports.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	nameStyle = lipgloss.NewStyle().
			Width(40)
)

// statusStyle picks the style for a status word.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "latest", "ok", "fixed", "complete":
		return successStyle
	case "missing", "error", "failed":
		return errorStyle
	case "skipped":
		return mutedStyle
	default:
		return warningStyle
	}
}
