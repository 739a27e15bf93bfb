package domain

import "time"

// Unit tells presentation how to render a series' values.
type Unit string

const (
	// UnitNone renders values as plain numbers.
	UnitNone Unit = ""
	// UnitBytes renders values as byte sizes.
	UnitBytes Unit = "bytes"
)

// DataPoint is a single aggregated value. Date is a Unix timestamp in
// milliseconds.
type DataPoint struct {
	Date  int64   `json:"date"`
	Value float64 `json:"value"`
}

// Time returns Date as a time.Time.
func (p DataPoint) Time() time.Time {
	return time.UnixMilli(p.Date)
}

// Series is one aggregated metric, e.g. "CPU 0" or "Network 1 out".
type Series struct {
	Key    string      `json:"key"`
	Values []DataPoint `json:"values"`
	Unit   Unit        `json:"unit,omitempty"`
}

// Floats returns the series values without dates.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, p := range s.Values {
		out[i] = p.Value
	}
	return out
}

// Catalog is the set of aggregated series, sorted ascending by key.
type Catalog []Series

// Lookup returns the series with the given key.
func (c Catalog) Lookup(key string) (Series, bool) {
	for _, s := range c {
		if s.Key == key {
			return s, true
		}
	}
	return Series{}, false
}

// Keys returns the metric keys in catalog order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c))
	for i, s := range c {
		keys[i] = s.Key
	}
	return keys
}
