package components

import (
	"strings"

	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is one key hint in the footer.
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer renders the key binding help bar. Bindings are listed most
// important first; the ones that do not fit the width are dropped.
func Footer(width int, bindings []KeyBinding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	sep := styles.KeySepStyle.Render(" · ")
	sepW := lipgloss.Width(sep)
	avail := width - 4

	parts := make([]string, 0, len(bindings))
	used := 0
	for _, b := range bindings {
		part := styles.FormatKeyBinding(b.Key, b.Desc)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += sepW
		}
		if used+w > avail {
			break
		}
		parts = append(parts, part)
		used += w
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(styles.DimGray).
		Render(strings.Join(parts, sep))
}
