// Package aggregate folds per-object stat payloads into averaged metric
// series.
//
// An Aggregate keeps a layer counter per metric key: the number of blocks
// that have contributed to that key so far. Each new block is folded into
// the existing values as a running mean weighted by that counter, so raw
// contributions never need to be stored.
//
// An Aggregate has a single owner. It is not safe for concurrent use; the
// run service funnels fetch results to one goroutine that merges them.
package aggregate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

// Aggregate accumulates metric series across objects for one run.
type Aggregate struct {
	layers  map[string]int
	metrics map[string]*domain.Series
}

// New returns an empty Aggregate.
func New() *Aggregate {
	return &Aggregate{
		layers:  make(map[string]int),
		metrics: make(map[string]*domain.Series),
	}
}

// Accumulate folds one block into the series stored under key. A nil block
// is a no-op. Index i of the block is dated timestampStart + i hours when it
// is the first sample seen at that index.
func (a *Aggregate) Accumulate(block domain.Block, key string, timestampStart int64, unit domain.Unit) {
	if block == nil {
		return
	}

	a.layers[key]++
	n := float64(a.layers[key])

	var values []domain.DataPoint
	if existing, ok := a.metrics[key]; ok {
		values = existing.Values
	}

	for i, sample := range block {
		v := float64(sample)
		if i >= len(values) {
			values = append(values, domain.DataPoint{
				Date:  timestampStart + domain.HourMillis*int64(i),
				Value: v,
			})
			continue
		}
		values[i].Value = (values[i].Value*(n-1) + v) / n
	}

	a.metrics[key] = &domain.Series{Key: key, Values: values, Unit: unit}
}

// Merge folds the stats of one object into the aggregate. The object's
// first sample is anchored using its memory series length and the result's
// end timestamp. If any resource fails, the aggregate is left exactly as it
// was before the call.
func (a *Aggregate) Merge(result *domain.StatsResult) error {
	if result == nil || result.Stats == nil {
		return domain.ErrMissingStats
	}
	stats := result.Stats
	if stats.Memory == nil {
		return domain.ErrMissingMemory
	}

	timestampStart := (result.EndTimestamp - 3600*int64(len(stats.Memory)-1)) * 1000

	snapshot := a.clone()
	for _, res := range domain.Resources() {
		if err := a.mergeResource(res, stats, timestampStart); err != nil {
			*a = *snapshot
			return fmt.Errorf("merging %s: %w", res, err)
		}
	}
	return nil
}

func (a *Aggregate) mergeResource(res domain.Resource, stats *domain.Stats, timestampStart int64) error {
	switch res {
	case domain.ResourceCPUs:
		return a.mergeCPUs(stats.CPUs, timestampStart)
	case domain.ResourceVIFs:
		a.mergeDirectional(stats.VIFs, "Network", networkDirection, timestampStart)
	case domain.ResourcePIFs:
		a.mergeDirectional(stats.PIFs, "NIC", networkDirection, timestampStart)
	case domain.ResourceXVDs:
		a.mergeDirectional(stats.XVDs, "Disk", diskDirection, timestampStart)
	case domain.ResourceLoad:
		a.Accumulate(stats.Load, KeyLoad, timestampStart, domain.UnitNone)
	case domain.ResourceMemoryUsed:
		a.Accumulate(stats.MemoryUsed, KeyMemoryUsed, timestampStart, domain.UnitBytes)
	default:
		return fmt.Errorf("unhandled resource %q", res)
	}
	return nil
}

// Layers returns how many blocks have contributed to key.
func (a *Aggregate) Layers(key string) int {
	return a.layers[key]
}

// LayerCounts returns a copy of every layer counter.
func (a *Aggregate) LayerCounts() map[string]int {
	return maps.Clone(a.layers)
}

// Series returns a copy of the series stored under key.
func (a *Aggregate) Series(key string) (domain.Series, bool) {
	s, ok := a.metrics[key]
	if !ok {
		return domain.Series{}, false
	}
	return copySeries(s), true
}

// Len returns the number of distinct metric keys.
func (a *Aggregate) Len() int {
	return len(a.metrics)
}

// Catalog returns every series sorted ascending by key.
func (a *Aggregate) Catalog() domain.Catalog {
	out := make(domain.Catalog, 0, len(a.metrics))
	for _, s := range a.metrics {
		out = append(out, copySeries(s))
	}
	slices.SortFunc(out, func(x, y domain.Series) int {
		return strings.Compare(x.Key, y.Key)
	})
	return out
}

func (a *Aggregate) clone() *Aggregate {
	c := &Aggregate{
		layers:  maps.Clone(a.layers),
		metrics: make(map[string]*domain.Series, len(a.metrics)),
	}
	for k, s := range a.metrics {
		cp := copySeries(s)
		c.metrics[k] = &cp
	}
	return c
}

func copySeries(s *domain.Series) domain.Series {
	return domain.Series{
		Key:    s.Key,
		Values: slices.Clone(s.Values),
		Unit:   s.Unit,
	}
}
