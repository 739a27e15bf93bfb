package format

import (
	"testing"

	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"github.com/google/go-cmp/cmp"
)

func TestSize(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1023.6, "1.0 KiB"},
		{-2048, "-2.0 KiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := Size(tt.in); got != tt.want {
			t.Errorf("Size(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{0.005, "0.005"},
		{0.5, "0.50"},
		{42.126, "42.13"},
		{1600, "1.6K"},
		{-2_500_000, "-2.5M"},
		{3_000_000_000, "3.0G"},
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValue_DispatchesOnUnit(t *testing.T) {
	if got := Value(domain.UnitBytes, 1024); got != "1.0 KiB" {
		t.Errorf("bytes: got %q", got)
	}
	if got := Value(domain.UnitNone, 1024); got != "1.0K" {
		t.Errorf("none: got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]domain.DataPoint{{Value: 1.2}, {Value: 0.5}, {Value: 3.8}})
	want := Summary{Cur: 3.8, Min: 0.5, Max: 3.8, Avg: 5.5 / 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(Summary{}, Summarize(nil)); diff != "" {
		t.Errorf("empty summary mismatch (-want +got):\n%s", diff)
	}
}
