package components

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/xostats/internal/format"
	"nathanbeddoewebdev/xostats/internal/stats/heatmap"
	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Heatmap renders a week grid with one coloured cell per weekday and hour.
//
//	     00 01 02 ... 23
//	Mon  ██ ██ ▒▒ ...
func Heatmap(g heatmap.Grid) string {
	var rows []string

	var b strings.Builder
	b.WriteString("     ")
	for h := range heatmap.Hours {
		if h%3 == 0 {
			fmt.Fprintf(&b, "%02d ", h)
		} else {
			b.WriteString("   ")
		}
	}
	rows = append(rows, styles.MutedText.Render(strings.TrimRight(b.String(), " ")))

	levels := len(styles.HeatLevels) - 1
	for row, day := range heatmap.Weekdays {
		b.Reset()
		b.WriteString(styles.Label.Render(fmt.Sprintf("%-5s", day.String()[:3])))
		for col := range heatmap.Hours {
			b.WriteString(styles.HeatCell(g.Level(g.Cells[row][col], levels)).Render("██"))
			b.WriteByte(' ')
		}
		rows = append(rows, b.String())
	}

	if g.Filled == 0 {
		rows = append(rows, styles.MutedText.Render("no data"))
	} else {
		legend := make([]string, 0, levels)
		for level := 1; level <= levels; level++ {
			legend = append(legend, styles.HeatCell(level).Render("█"))
		}
		rows = append(rows, styles.MutedText.Render(fmt.Sprintf("min %s ", format.Value(g.Unit, g.Min)))+
			strings.Join(legend, "")+
			styles.MutedText.Render(fmt.Sprintf(" max %s", format.Value(g.Unit, g.Max))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
