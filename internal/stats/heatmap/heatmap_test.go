package heatmap

import (
	"testing"
	"time"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

// monday is 2024-01-15, a Monday, at midnight UTC.
var monday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func point(t time.Time, v float64) domain.DataPoint {
	return domain.DataPoint{Date: t.UnixMilli(), Value: v}
}

func TestBuild_BucketsByWeekdayAndHour(t *testing.T) {
	s := domain.Series{
		Key: "Load",
		Values: []domain.DataPoint{
			point(monday.Add(3*time.Hour), 2),
			point(monday.Add(7*24*time.Hour+3*time.Hour), 4),
			point(monday.Add(6*24*time.Hour+23*time.Hour), 10),
		},
	}

	g := Build(s, time.UTC)

	mon3 := g.Cells[0][3]
	if mon3.Count != 2 || mon3.Value != 3 {
		t.Errorf("Monday 03:00: expected mean 3 of 2 samples, got %+v", mon3)
	}
	sun23 := g.Cells[6][23]
	if sun23.Count != 1 || sun23.Value != 10 {
		t.Errorf("Sunday 23:00: expected 10, got %+v", sun23)
	}
	if g.Filled != 2 {
		t.Errorf("expected 2 filled cells, got %d", g.Filled)
	}
	if g.Min != 3 || g.Max != 10 {
		t.Errorf("expected min 3 max 10, got %v %v", g.Min, g.Max)
	}
}

func TestBuild_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	s := domain.Series{Values: []domain.DataPoint{point(monday.Add(23*time.Hour), 1)}}

	g := Build(s, loc)

	// 23:00 UTC Monday is 01:00 Tuesday at UTC+2.
	if !g.Cells[1][1].Filled() {
		t.Error("expected Tuesday 01:00 to be filled")
	}
}

func TestBuild_Empty(t *testing.T) {
	g := Build(domain.Series{Key: "Load"}, nil)
	if g.Filled != 0 || g.Min != 0 || g.Max != 0 {
		t.Errorf("expected empty grid, got filled=%d min=%v max=%v", g.Filled, g.Min, g.Max)
	}
}

func TestLevel(t *testing.T) {
	g := Grid{Min: 0, Max: 100}

	tests := []struct {
		value float64
		want  int
	}{
		{0, 1},
		{10, 1},
		{50, 2},
		{51, 3},
		{100, 4},
	}
	for _, tt := range tests {
		if got := g.Level(Cell{Value: tt.value, Count: 1}, 4); got != tt.want {
			t.Errorf("Level(%v) = %d, want %d", tt.value, got, tt.want)
		}
	}

	if got := g.Level(Cell{}, 4); got != 0 {
		t.Errorf("empty cell: expected level 0, got %d", got)
	}

	flat := Grid{Min: 5, Max: 5}
	if got := flat.Level(Cell{Value: 5, Count: 1}, 4); got != 4 {
		t.Errorf("flat grid: expected top level, got %d", got)
	}
}
