// Package dashboard holds the selection state of the stats dashboard: which
// objects are selected, whether an aggregation run is loading, and the
// resulting metric catalog.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"
)

// State is the lifecycle of one aggregation run.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ObjectSource lists the objects available for selection.
type ObjectSource interface {
	RunningHosts(ctx context.Context) ([]domain.Object, error)
	RunningVMs(ctx context.Context) ([]domain.Object, error)
}

// Runner executes an aggregation run.
type Runner interface {
	Run(ctx context.Context, objects []domain.Object) (*run.Report, error)
}

// Dashboard is safe for concurrent use. Selection changes are refused
// while a run is loading; a run in flight is never cancelled by the
// dashboard.
type Dashboard struct {
	source ObjectSource
	runner Runner

	mu       sync.Mutex
	state    State
	objects  []domain.Object
	report   *run.Report
	selected *domain.Series
}

// New returns an idle dashboard with an empty selection.
func New(source ObjectSource, runner Runner) *Dashboard {
	return &Dashboard{source: source, runner: runner}
}

// State returns the current run state.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Selection returns a copy of the selected objects.
func (d *Dashboard) Selection() []domain.Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.objects)
}

// Report returns the last completed run, or nil.
func (d *Dashboard) Report() *run.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report
}

// Catalog returns the metrics of the last completed run.
func (d *Dashboard) Catalog() domain.Catalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.report == nil {
		return nil
	}
	return d.report.Catalog
}

// SelectedMetric returns the metric chosen with SelectMetric.
func (d *Dashboard) SelectedMetric() (domain.Series, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selected == nil {
		return domain.Series{}, false
	}
	return *d.selected, true
}

// Eligible reports whether obj may join the current selection: it must be
// running and, when something is already selected, of the same type as the
// first selected object.
func (d *Dashboard) Eligible(obj domain.Object) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return eligible(d.objects, obj)
}

func eligible(selection []domain.Object, obj domain.Object) bool {
	if !obj.Running() {
		return false
	}
	return len(selection) == 0 || obj.Type == selection[0].Type
}

// Select replaces the selection. All objects must be running and share the
// type of the first one.
func (d *Dashboard) Select(objects []domain.Object) error {
	for _, obj := range objects {
		if !obj.Running() {
			return fmt.Errorf("%s: %w", obj.Label(), domain.ErrNotRunning)
		}
		if obj.Type != objects[0].Type {
			return fmt.Errorf("%s is a %s, selection is %s: %w",
				obj.Label(), obj.Type, objects[0].Type, domain.ErrMixedSelection)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateLoading {
		return domain.ErrRunInFlight
	}
	d.replaceSelection(objects)
	return nil
}

// Toggle adds obj to the selection, or removes it if already selected.
func (d *Dashboard) Toggle(obj domain.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateLoading {
		return domain.ErrRunInFlight
	}

	idx := slices.IndexFunc(d.objects, func(o domain.Object) bool { return o.ID == obj.ID })
	if idx >= 0 {
		d.replaceSelection(slices.Delete(slices.Clone(d.objects), idx, idx+1))
		return nil
	}

	if !obj.Running() {
		return fmt.Errorf("%s: %w", obj.Label(), domain.ErrNotRunning)
	}
	if !eligible(d.objects, obj) {
		return fmt.Errorf("%s is a %s, selection is %s: %w",
			obj.Label(), obj.Type, d.objects[0].Type, domain.ErrMixedSelection)
	}
	d.replaceSelection(append(slices.Clone(d.objects), obj))
	return nil
}

// SelectAllHosts replaces the selection with every running host.
func (d *Dashboard) SelectAllHosts(ctx context.Context) error {
	return d.selectAll(ctx, d.source.RunningHosts)
}

// SelectAllVMs replaces the selection with every running VM.
func (d *Dashboard) SelectAllVMs(ctx context.Context) error {
	return d.selectAll(ctx, d.source.RunningVMs)
}

func (d *Dashboard) selectAll(ctx context.Context, list func(context.Context) ([]domain.Object, error)) error {
	if d.State() == StateLoading {
		return domain.ErrRunInFlight
	}

	objects, err := list(ctx)
	if err != nil {
		return fmt.Errorf("failed to list running objects: %w", err)
	}
	return d.Select(objects)
}

// Reset clears the selection and any computed metrics.
func (d *Dashboard) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateLoading {
		return domain.ErrRunInFlight
	}
	d.replaceSelection(nil)
	return nil
}

// Validate runs an aggregation over the current selection. The dashboard
// is Loading for the duration of the run and Loaded afterwards, whatever
// the per-object outcomes.
func (d *Dashboard) Validate(ctx context.Context) (*run.Report, error) {
	d.mu.Lock()
	if d.state == StateLoading {
		d.mu.Unlock()
		return nil, domain.ErrRunInFlight
	}
	if len(d.objects) == 0 {
		d.mu.Unlock()
		return nil, domain.ErrEmptySelection
	}
	objects := slices.Clone(d.objects)
	d.state = StateLoading
	d.report = nil
	d.selected = nil
	d.mu.Unlock()

	report, err := d.runner.Run(ctx, objects)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = StateIdle
		return nil, err
	}
	d.state = StateLoaded
	d.report = report
	return report, nil
}

// SelectMetric picks the series to visualise.
func (d *Dashboard) SelectMetric(key string) (domain.Series, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateLoaded || d.report == nil {
		return domain.Series{}, fmt.Errorf("%q: %w", key, domain.ErrUnknownMetric)
	}

	s, ok := d.report.Catalog.Lookup(key)
	if !ok {
		return domain.Series{}, fmt.Errorf("%q: %w", key, domain.ErrUnknownMetric)
	}
	d.selected = &s
	return s, nil
}

// ClearMetric deselects the visualised series.
func (d *Dashboard) ClearMetric() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = nil
}

// replaceSelection must be called with mu held.
func (d *Dashboard) replaceSelection(objects []domain.Object) {
	d.objects = objects
	d.state = StateIdle
	d.report = nil
	d.selected = nil
}
