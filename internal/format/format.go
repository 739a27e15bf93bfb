// Package format renders aggregated metric values for display.
package format

import (
	"fmt"
	"math"

	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"github.com/dustin/go-humanize"
)

// Size renders a byte count with binary units, e.g. "1.5 KiB".
func Size(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	if v < 0 {
		return "-" + humanize.IBytes(uint64(math.Round(-v)))
	}
	return humanize.IBytes(uint64(math.Round(v)))
}

// Number renders a plain value using human-readable scaling.
func Number(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fG", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v == 0:
		return "0"
	case abs < 0.01:
		return fmt.Sprintf("%.3f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Value renders v according to unit.
func Value(unit domain.Unit, v float64) string {
	if unit == domain.UnitBytes {
		return Size(v)
	}
	return Number(v)
}

// Summary holds cur (last), min, max and mean of a series.
type Summary struct {
	Cur, Min, Max, Avg float64
}

// Summarize computes cur (last), min, max, avg for a series.
func Summarize(points []domain.DataPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	s := Summary{
		Cur: points[len(points)-1].Value,
		Min: points[0].Value,
		Max: points[0].Value,
	}
	sum := 0.0
	for _, p := range points {
		v := p.Value
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Avg = sum / float64(len(points))
	return s
}
