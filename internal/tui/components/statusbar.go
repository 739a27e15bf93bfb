package components

import (
	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// StatusKind selects how a status message is coloured.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusError
)

// StatusBar renders a one-line status message between the content and the
// footer. Messages wider than the bar are truncated.
func StatusBar(width int, message string, kind StatusKind) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	switch kind {
	case StatusSuccess:
		style = styles.SuccessText
	case StatusError:
		style = styles.ErrorText
	}

	message = ansi.Truncate(message, max(width-4, 1), "…")
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}
