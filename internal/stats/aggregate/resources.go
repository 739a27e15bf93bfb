package aggregate

import (
	"fmt"
	"slices"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

// Fixed metric keys.
const (
	KeyAllCPUs    = "All CPUs"
	KeyLoad       = "Load"
	KeyMemoryUsed = "RAM used"
)

// CPUKey returns the metric key of core i.
func CPUKey(i int) string {
	return fmt.Sprintf("CPU %d", i)
}

// networkDirection maps a vif/pif group to its label: "rx" is "out" and
// every other group is "in".
func networkDirection(group string) string {
	if group == "rx" {
		return "out"
	}
	return "in"
}

func diskDirection(group string) string {
	if group == "r" {
		return "read"
	}
	return "write"
}

// mergeCPUs accumulates every core under "CPU i" and then rebuilds the
// "All CPUs" series as the positional mean of CPU 0..N-1, where N is this
// object's core count.
//
// The composite is merged by index, not by date: every core series must be
// at most as long as CPU 0. Shorter series only contribute their prefix.
func (a *Aggregate) mergeCPUs(cpus domain.Instances, timestampStart int64) error {
	for i, core := range cpus {
		a.Accumulate(core, CPUKey(i), timestampStart, domain.UnitNone)
	}

	n := len(cpus)
	if n == 0 {
		return nil
	}

	first, ok := a.metrics[CPUKey(0)]
	if !ok {
		return fmt.Errorf("%s has no samples: %w", CPUKey(0), domain.ErrMisalignedCores)
	}
	avg := slices.Clone(first.Values)

	for i := 1; i < n; i++ {
		core, ok := a.metrics[CPUKey(i)]
		if !ok {
			return fmt.Errorf("%s has no samples: %w", CPUKey(i), domain.ErrMisalignedCores)
		}
		if len(core.Values) > len(avg) {
			return fmt.Errorf("%s has %d samples, %s has %d: %w",
				CPUKey(i), len(core.Values), CPUKey(0), len(avg), domain.ErrMisalignedCores)
		}
		for j, p := range core.Values {
			avg[j].Value += p.Value
		}
	}

	for j := range avg {
		avg[j].Value /= float64(n)
	}

	a.metrics[KeyAllCPUs] = &domain.Series{Key: KeyAllCPUs, Values: avg}
	return nil
}

// mergeDirectional accumulates every instance of every group under
// "{prefix} {index} {direction}" with byte-size rendering. Groups are
// visited in sorted order so runs are reproducible.
func (a *Aggregate) mergeDirectional(groups map[string]domain.Instances, prefix string, direction func(string) string, timestampStart int64) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dir := direction(name)
		for i, block := range groups[name] {
			key := fmt.Sprintf("%s %d %s", prefix, i, dir)
			a.Accumulate(block, key, timestampStart, domain.UnitBytes)
		}
	}
}
