package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- Typography ---

var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Subtitle is used for secondary headings.
	Subtitle = lipgloss.NewStyle().
			Foreground(Gray)

	// Label is used for field names and metric keys.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	Value = lipgloss.NewStyle().
		Foreground(White)

	// MutedText is for hints, ineligible objects and less important info.
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	AccentText = lipgloss.NewStyle().
			Foreground(Blue)

	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)
)

// --- Status badges ---

// StatusStyle returns a style for a dashboard state or power state.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "running", "loaded":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "loading", "paused", "suspended":
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	case "halted":
		return lipgloss.NewStyle().Foreground(Red)
	default:
		return lipgloss.NewStyle().Foreground(Gray)
	}
}

// StatusIndicator returns a small dot + status text with appropriate color.
func StatusIndicator(status string) string {
	style := StatusStyle(status)
	return style.Render("●") + " " + style.Render(status)
}

// --- Selection lists ---

var (
	// SelectedRow highlights the row under the cursor in the object and
	// metric lists.
	SelectedRow = lipgloss.NewStyle().
			Foreground(White).
			Background(DarkBlue).
			Bold(true)

	checked   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	unchecked = lipgloss.NewStyle().Foreground(Gray)
)

// Checkbox renders the selection mark of an object row.
func Checkbox(selected bool) string {
	if selected {
		return checked.Render("[x]")
	}
	return unchecked.Render("[ ]")
}

// Spinner is the style of the loading spinner.
var Spinner = lipgloss.NewStyle().Foreground(Blue)

// --- Heatmap ---

// HeatCell returns the style of a heatmap cell at level, clamped to
// HeatLevels.
func HeatCell(level int) lipgloss.Style {
	level = max(0, min(level, len(HeatLevels)-1))
	return lipgloss.NewStyle().Foreground(HeatLevels[level])
}

// --- Layout components ---

// Card is a rounded-border panel for content sections.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(DimGray).
	Padding(1, 2)

// --- Key binding hint styles ---

var (
	// KeyStyle is used for key labels in the footer (e.g. "q").
	KeyStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true)

	// KeyDescStyle is used for key descriptions in the footer (e.g. "quit").
	KeyDescStyle = lipgloss.NewStyle().
			Foreground(Muted)

	KeySepStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// FormatKeyBinding formats a single key binding for the footer.
func FormatKeyBinding(key, desc string) string {
	return KeyStyle.Render(key) + " " + KeyDescStyle.Render(desc)
}
