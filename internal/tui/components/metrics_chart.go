package components

import (
	"fmt"

	"nathanbeddoewebdev/xostats/internal/format"
	"nathanbeddoewebdev/xostats/internal/stats/domain"
	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
)

// chartHeight is the fixed height for all metric sparklines.
const chartHeight = 5

// MetricsChart renders a series as a sparkline with a label header and a
// cur/min/max/avg summary line. Returns a muted placeholder if the series
// is empty.
func MetricsChart(s domain.Series, width int) string {
	if len(s.Values) == 0 {
		return styles.MutedText.Render(s.Key + ": no data")
	}

	plotWidth := max(width, 10)
	data := s.Floats()
	// The sparkline scrolls; keep the most recent points that fit.
	if len(data) > plotWidth {
		data = data[len(data)-plotWidth:]
	}

	sl := sparkline.New(plotWidth, chartHeight,
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(styles.Blue)),
	)
	sl.PushAll(data)
	sl.DrawBraille()

	sum := format.Summarize(s.Values)
	summary := styles.MutedText.Render(
		fmt.Sprintf("  cur: %s  min: %s  max: %s  avg: %s",
			format.Value(s.Unit, sum.Cur),
			format.Value(s.Unit, sum.Min),
			format.Value(s.Unit, sum.Max),
			format.Value(s.Unit, sum.Avg),
		),
	)

	header := styles.Label.Render(s.Key)
	return lipgloss.JoinVertical(lipgloss.Left, header, sl.View(), summary)
}
