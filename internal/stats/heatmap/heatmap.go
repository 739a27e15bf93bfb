// Package heatmap lays a metric series out as a week grid: one row per
// weekday, one column per hour of the day.
package heatmap

import (
	"math"
	"time"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

const (
	Days  = 7
	Hours = 24
)

// Weekdays lists the row order, Monday first.
var Weekdays = [Days]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Cell is the mean of every sample that fell into one weekday/hour slot.
type Cell struct {
	Value float64
	Count int
}

// Filled reports whether any sample landed in the cell.
func (c Cell) Filled() bool { return c.Count > 0 }

// Grid is a week heatmap of one series.
type Grid struct {
	Key   string
	Unit  domain.Unit
	Cells [Days][Hours]Cell
	Min   float64
	Max   float64
	// Filled is the number of cells with at least one sample.
	Filled int
}

// Build buckets the series by weekday and hour in loc. A nil loc means UTC.
func Build(s domain.Series, loc *time.Location) Grid {
	if loc == nil {
		loc = time.UTC
	}

	g := Grid{Key: s.Key, Unit: s.Unit}
	for _, p := range s.Values {
		t := p.Time().In(loc)
		row := rowOf(t.Weekday())
		c := &g.Cells[row][t.Hour()]
		c.Count++
		c.Value += (p.Value - c.Value) / float64(c.Count)
	}

	g.Min, g.Max = math.Inf(1), math.Inf(-1)
	for row := range g.Cells {
		for col := range g.Cells[row] {
			c := g.Cells[row][col]
			if !c.Filled() {
				continue
			}
			g.Filled++
			g.Min = math.Min(g.Min, c.Value)
			g.Max = math.Max(g.Max, c.Value)
		}
	}
	if g.Filled == 0 {
		g.Min, g.Max = 0, 0
	}
	return g
}

// Level maps a filled cell to an intensity in [1, levels]; empty cells are
// level 0. When every filled cell holds the same value they all get the top
// level.
func (g Grid) Level(c Cell, levels int) int {
	if !c.Filled() || levels < 1 {
		return 0
	}
	span := g.Max - g.Min
	if span <= 0 {
		return levels
	}
	lvl := int(math.Ceil((c.Value - g.Min) / span * float64(levels)))
	return max(1, min(lvl, levels))
}

func rowOf(d time.Weekday) int {
	// time.Weekday starts on Sunday; rows start on Monday.
	return (int(d) + 6) % Days
}
