package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Granularity is the sampling resolution requested from the stats source.
type Granularity string

const (
	GranularitySeconds Granularity = "seconds"
	GranularityMinutes Granularity = "minutes"
	GranularityHours   Granularity = "hours"
	GranularityDays    Granularity = "days"
)

// HourMillis is the distance between two consecutive hourly samples.
const HourMillis int64 = 3_600_000

// maxInstances bounds index-keyed instance and sample maps so a hostile
// payload cannot force a huge allocation.
const maxInstances = 4096

// Resource enumerates the per-object stat blocks the aggregation engine
// understands. Any other payload field is ignored.
type Resource string

const (
	ResourceCPUs       Resource = "cpus"
	ResourceVIFs       Resource = "vifs"
	ResourcePIFs       Resource = "pifs"
	ResourceXVDs       Resource = "xvds"
	ResourceLoad       Resource = "load"
	ResourceMemoryUsed Resource = "memoryUsed"
)

// memoryField only contributes its length, to anchor timestamps.
const memoryField = "memory"

// Resources returns every known resource in dispatch order.
func Resources() []Resource {
	return []Resource{
		ResourceCPUs,
		ResourceVIFs,
		ResourcePIFs,
		ResourceXVDs,
		ResourceLoad,
		ResourceMemoryUsed,
	}
}

// ParseResource resolves a payload field name to a Resource.
func ParseResource(name string) (Resource, bool) {
	for _, r := range Resources() {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

// Sample is one numeric stat value. It decodes leniently: finite numbers
// as-is, numeric strings parsed, booleans as 0/1, and anything else
// (including infinities) as 0.
type Sample float64

func (s *Sample) UnmarshalJSON(data []byte) error {
	*s = Sample(coerce(data))
	return nil
}

func coerce(data []byte) float64 {
	raw := strings.TrimSpace(string(data))
	switch raw {
	case "", "null", "false":
		return 0
	case "true":
		return 1
	}

	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal([]byte(raw), &str); err != nil {
			return 0
		}
		raw = strings.TrimSpace(str)
		if raw == "" {
			return 0
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Block is the series of hourly samples of one resource instance, indexed
// by hour offset. A nil Block means the object lacks that resource.
type Block []Sample

// UnmarshalJSON accepts either a JSON array of samples or an object keyed by
// decimal hour index. Missing hours decode as 0.
func (b *Block) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*b = nil
		return nil
	}

	if trimmed[0] != '{' {
		var samples []Sample
		if err := json.Unmarshal(trimmed, &samples); err != nil {
			return err
		}
		*b = samples
		return nil
	}

	var keyed map[string]Sample
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return err
	}
	*b = fromKeyed(keyed)
	return nil
}

// Instances holds one Block per resource instance (core, NIC, disk).
type Instances []Block

// UnmarshalJSON accepts either a JSON array of blocks or an object keyed by
// decimal instance index. Missing indexes are left as nil blocks.
func (in *Instances) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*in = nil
		return nil
	}

	if trimmed[0] != '{' {
		var blocks []Block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return err
		}
		*in = blocks
		return nil
	}

	var keyed map[string]Block
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return err
	}
	*in = fromKeyed(keyed)
	return nil
}

// fromKeyed lays an index-keyed object out as a slice. Keys that are not
// decimal indexes below maxInstances are skipped.
func fromKeyed[T any](keyed map[string]T) []T {
	out := []T{}
	for key, v := range keyed {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= maxInstances {
			continue
		}
		for len(out) <= i {
			var zero T
			out = append(out, zero)
		}
		out[i] = v
	}
	return out
}

// Stats is the raw stats payload of one host or VM.
type Stats struct {
	CPUs       Instances            `json:"cpus,omitempty"`
	VIFs       map[string]Instances `json:"vifs,omitempty"`
	PIFs       map[string]Instances `json:"pifs,omitempty"`
	XVDs       map[string]Instances `json:"xvds,omitempty"`
	Load       Block                `json:"load,omitempty"`
	MemoryUsed Block                `json:"memoryUsed,omitempty"`
	Memory     Block                `json:"memory,omitempty"`

	// Unknown lists payload fields that matched no resource.
	Unknown []string `json:"-"`
}

// UnmarshalJSON resolves each payload field through ParseResource so that
// unknown resource names are recorded and skipped rather than rejected.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	*s = Stats{}
	for _, name := range names {
		raw := fields[name]
		if name == memoryField {
			if err := json.Unmarshal(raw, &s.Memory); err != nil {
				return fmt.Errorf("stats: decoding %s: %w", name, err)
			}
			continue
		}

		res, ok := ParseResource(name)
		if !ok {
			s.Unknown = append(s.Unknown, name)
			continue
		}
		if err := s.decode(res, raw); err != nil {
			return fmt.Errorf("stats: decoding %s: %w", name, err)
		}
	}

	return nil
}

func (s *Stats) decode(res Resource, raw json.RawMessage) error {
	switch res {
	case ResourceCPUs:
		return json.Unmarshal(raw, &s.CPUs)
	case ResourceVIFs:
		return json.Unmarshal(raw, &s.VIFs)
	case ResourcePIFs:
		return json.Unmarshal(raw, &s.PIFs)
	case ResourceXVDs:
		return json.Unmarshal(raw, &s.XVDs)
	case ResourceLoad:
		return json.Unmarshal(raw, &s.Load)
	case ResourceMemoryUsed:
		return json.Unmarshal(raw, &s.MemoryUsed)
	default:
		return fmt.Errorf("unhandled resource %q", res)
	}
}

// StatsResult is the response of a host.stats or vm.stats call.
type StatsResult struct {
	Stats        *Stats `json:"stats,omitempty"`
	EndTimestamp int64  `json:"endTimestamp"`
	Interval     int64  `json:"interval,omitempty"`
}
