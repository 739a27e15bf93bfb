package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSample_LenientDecoding(t *testing.T) {
	var got []Sample
	input := `[1.5, "2.25", null, "", "abc", true, false, " 7 ", "inf", "Infinity", "-INF", "NaN"]`
	if err := json.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Sample{1.5, 2.25, 0, 0, 0, 1, 0, 7, 0, 0, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestSample_InfinityStaysEncodable(t *testing.T) {
	var s Sample
	if err := json.Unmarshal([]byte(`"Infinity"`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := json.Marshal(DataPoint{Date: 0, Value: float64(s)}); err != nil {
		t.Errorf("decoded sample should marshal, got %v", err)
	}
}

func TestBlock_KeyedForm(t *testing.T) {
	var got Block
	if err := json.Unmarshal([]byte(`{"2":"3","0":1,"hour":9,"-1":4}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Block{1, 0, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("block mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_KeyedFormIsBounded(t *testing.T) {
	var got Block
	if err := json.Unmarshal([]byte(`{"0":1,"100000000":2}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Block{1}, got); diff != "" {
		t.Errorf("out-of-range index should be skipped (-want +got):\n%s", diff)
	}
}

func TestStats_KeyedScalarBlocks(t *testing.T) {
	payload := `{
		"memory": {"0": 2048, "1": 2048},
		"load": {"0": 1, "1": 2},
		"memoryUsed": {"1": 512, "0": 256}
	}`

	var got Stats
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Stats{
		Load:       Block{1, 2},
		MemoryUsed: Block{256, 512},
		Memory:     Block{2048, 2048},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestInstances_ArrayForm(t *testing.T) {
	var got Instances
	if err := json.Unmarshal([]byte(`[[1,2],[3,4]]`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Instances{{1, 2}, {3, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instances mismatch (-want +got):\n%s", diff)
	}
}

func TestInstances_KeyedForm(t *testing.T) {
	var got Instances
	if err := json.Unmarshal([]byte(`{"2":[5],"0":[1],"name":[9]}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Instances{{1}, nil, {5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instances mismatch (-want +got):\n%s", diff)
	}
}

func TestStats_DecodeKnownAndUnknownFields(t *testing.T) {
	payload := `{
		"cpus": [[10, 20]],
		"vifs": {"rx": [[1]], "tx": [[2]]},
		"xvds": {"r": [[3]], "w": [[4]]},
		"load": ["0.5"],
		"memoryUsed": [1024],
		"memory": [2048, 2048],
		"memoryFree": [1024],
		"iops": {"r": [[1]]}
	}`

	var got Stats
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Stats{
		CPUs:       Instances{{10, 20}},
		VIFs:       map[string]Instances{"rx": {{1}}, "tx": {{2}}},
		XVDs:       map[string]Instances{"r": {{3}}, "w": {{4}}},
		Load:       Block{0.5},
		MemoryUsed: Block{1024},
		Memory:     Block{2048, 2048},
		Unknown:    []string{"iops", "memoryFree"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestStats_MalformedResource(t *testing.T) {
	var got Stats
	err := json.Unmarshal([]byte(`{"cpus": 42}`), &got)
	if err == nil {
		t.Fatal("expected error for non-array cpus")
	}
}

func TestStatsResult_MissingStats(t *testing.T) {
	var got StatsResult
	if err := json.Unmarshal([]byte(`{"endTimestamp": 1700000000}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stats != nil {
		t.Errorf("expected nil stats, got %+v", got.Stats)
	}
	if got.EndTimestamp != 1700000000 {
		t.Errorf("expected endTimestamp 1700000000, got %d", got.EndTimestamp)
	}
}

func TestParseResource(t *testing.T) {
	for _, r := range Resources() {
		got, ok := ParseResource(string(r))
		if !ok || got != r {
			t.Errorf("ParseResource(%q) = %q, %v", r, got, ok)
		}
	}
	if _, ok := ParseResource("memory"); ok {
		t.Error("memory must not resolve to an aggregated resource")
	}
}

func TestObject_Label(t *testing.T) {
	if got := (Object{ID: "abc", NameLabel: "web-1"}).Label(); got != "web-1" {
		t.Errorf("expected name label, got %q", got)
	}
	if got := (Object{ID: "abc"}).Label(); got != "abc" {
		t.Errorf("expected ID fallback, got %q", got)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := Catalog{{Key: "CPU 0"}, {Key: "Load"}}
	if _, ok := c.Lookup("Load"); !ok {
		t.Error("expected Load in catalog")
	}
	if _, ok := c.Lookup("RAM used"); ok {
		t.Error("did not expect RAM used in catalog")
	}
	if diff := cmp.Diff([]string{"CPU 0", "Load"}, c.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}
