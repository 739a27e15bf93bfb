package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"nathanbeddoewebdev/xostats/internal/retry"
	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"github.com/google/go-cmp/cmp"
)

const testEnd int64 = 1_700_000_000

type mockFetcher struct {
	mu       sync.Mutex
	results  map[string]*domain.StatsResult
	errs     map[string]error
	delay    func(id string) time.Duration
	hostIDs  []string
	vmIDs    []string
	failOnce map[string]error
}

func (m *mockFetcher) HostStats(ctx context.Context, id string, g domain.Granularity) (*domain.StatsResult, error) {
	m.mu.Lock()
	m.hostIDs = append(m.hostIDs, id)
	m.mu.Unlock()
	return m.lookup(id, g)
}

func (m *mockFetcher) VMStats(ctx context.Context, id string, g domain.Granularity) (*domain.StatsResult, error) {
	m.mu.Lock()
	m.vmIDs = append(m.vmIDs, id)
	m.mu.Unlock()
	return m.lookup(id, g)
}

func (m *mockFetcher) lookup(id string, g domain.Granularity) (*domain.StatsResult, error) {
	if g != domain.GranularityHours {
		return nil, fmt.Errorf("unexpected granularity %q", g)
	}
	if m.delay != nil {
		time.Sleep(m.delay(id))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOnce[id]; ok {
		delete(m.failOnce, id)
		return nil, err
	}
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	return m.results[id], nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	titles  []string
	details []string
}

func (r *recordingNotifier) ReportError(title, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.details = append(r.details, detail)
}

func hourly(stats domain.Stats, n int) *domain.StatsResult {
	stats.Memory = make(domain.Block, n)
	return &domain.StatsResult{Stats: &stats, EndTimestamp: testEnd}
}

func vm(id, label string) domain.Object {
	return domain.Object{ID: id, NameLabel: label, Type: domain.ObjectVM, PowerState: domain.PowerStateRunning}
}

func host(id string) domain.Object {
	return domain.Object{ID: id, Type: domain.ObjectHost, PowerState: domain.PowerStateRunning}
}

func TestRun_EmptySelection(t *testing.T) {
	svc := NewService(&mockFetcher{}, nil)

	_, err := svc.Run(context.Background(), nil)
	if !errors.Is(err, domain.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestRun_SingleObject(t *testing.T) {
	fetcher := &mockFetcher{results: map[string]*domain.StatsResult{
		"a": hourly(domain.Stats{CPUs: domain.Instances{{10, 20}}}, 2),
	}}
	svc := NewService(fetcher, nil)

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "web")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := (testEnd - 3600) * 1000
	want := []domain.DataPoint{
		{Date: start, Value: 10},
		{Date: start + domain.HourMillis, Value: 20},
	}
	cpu0, ok := report.Catalog.Lookup("CPU 0")
	if !ok {
		t.Fatalf("expected CPU 0, got %v", report.Catalog.Keys())
	}
	if diff := cmp.Diff(want, cpu0.Values); diff != "" {
		t.Errorf("CPU 0 mismatch (-want +got):\n%s", diff)
	}
	if report.Layers["CPU 0"] != 1 {
		t.Errorf("expected layer count 1, got %d", report.Layers["CPU 0"])
	}
	if len(report.Failures) != 0 {
		t.Errorf("expected no failures, got %v", report.Failures)
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	fetcher := &mockFetcher{
		results: map[string]*domain.StatsResult{
			"a": hourly(domain.Stats{Load: domain.Block{1}, CPUs: domain.Instances{{10}}}, 1),
			"c": hourly(domain.Stats{Load: domain.Block{3}, CPUs: domain.Instances{{30}}}, 1),
		},
		errs: map[string]error{"b": errors.New("connection reset")},
	}
	notifier := &recordingNotifier{}
	svc := NewService(fetcher, notifier)

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "a"), vm("b", "broken"), vm("c", "c")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"Load", "CPU 0"} {
		if report.Layers[key] != 2 {
			t.Errorf("%s: expected layer count 2, got %d", key, report.Layers[key])
		}
	}
	load, _ := report.Catalog.Lookup("Load")
	if got := load.Values[0].Value; got != 2 {
		t.Errorf("expected Load mean 2, got %v", got)
	}

	if len(notifier.titles) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.titles))
	}
	if notifier.titles[0] != ErrorTitle {
		t.Errorf("expected title %q, got %q", ErrorTitle, notifier.titles[0])
	}
	if notifier.details[0] != "Unable to fetch stats for broken" {
		t.Errorf("unexpected detail %q", notifier.details[0])
	}

	if len(report.Failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(report.Failures))
	}
	if !errors.Is(report.Failures[0].Err, domain.ErrFetchRejected) {
		t.Errorf("expected ErrFetchRejected, got %v", report.Failures[0].Err)
	}
}

func TestRun_MissingStatsReportedWithIDFallback(t *testing.T) {
	fetcher := &mockFetcher{results: map[string]*domain.StatsResult{
		"a":       hourly(domain.Stats{Load: domain.Block{1}}, 1),
		"no-data": {EndTimestamp: testEnd},
	}}
	notifier := &recordingNotifier{}
	svc := NewService(fetcher, notifier)

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "a"), vm("no-data", "")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Failures) != 1 || !errors.Is(report.Failures[0].Err, domain.ErrMissingStats) {
		t.Fatalf("expected one ErrMissingStats failure, got %v", report.Failures)
	}
	if diff := cmp.Diff([]string{"Unable to fetch stats for no-data"}, notifier.details); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
	if report.Layers["Load"] != 1 {
		t.Errorf("expected Load layer count 1, got %d", report.Layers["Load"])
	}
}

func TestRun_AllObjectsFailStillCompletes(t *testing.T) {
	fetcher := &mockFetcher{errs: map[string]error{
		"a": errors.New("boom"),
		"b": errors.New("boom"),
	}}
	notifier := &recordingNotifier{}
	svc := NewService(fetcher, notifier)

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "a"), vm("b", "b")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Catalog) != 0 {
		t.Errorf("expected empty catalog, got %v", report.Catalog.Keys())
	}
	if len(notifier.titles) != 2 {
		t.Errorf("expected two notifications, got %d", len(notifier.titles))
	}
}

func TestRun_FirstObjectTypeSelectsFetcher(t *testing.T) {
	fetcher := &mockFetcher{results: map[string]*domain.StatsResult{
		"h1": hourly(domain.Stats{Load: domain.Block{1}}, 1),
		"h2": hourly(domain.Stats{Load: domain.Block{1}}, 1),
	}}
	svc := NewService(fetcher, nil)

	if _, err := svc.Run(context.Background(), []domain.Object{host("h1"), host("h2")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetcher.hostIDs) != 2 || len(fetcher.vmIDs) != 0 {
		t.Errorf("expected 2 host calls and 0 vm calls, got %v / %v", fetcher.hostIDs, fetcher.vmIDs)
	}
}

func TestRun_SortedCatalog(t *testing.T) {
	fetcher := &mockFetcher{results: map[string]*domain.StatsResult{
		"a": hourly(domain.Stats{
			MemoryUsed: domain.Block{1},
			CPUs:       domain.Instances{{1}},
			Load:       domain.Block{1},
		}, 1),
	}}
	svc := NewService(fetcher, nil)

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"All CPUs", "CPU 0", "Load", "RAM used"}
	if diff := cmp.Diff(want, report.Catalog.Keys()); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_LayerCountIndependentOfCompletionOrder(t *testing.T) {
	const n = 40
	results := make(map[string]*domain.StatsResult, n)
	objects := make([]domain.Object, 0, n)
	for i := range n {
		id := fmt.Sprintf("vm-%d", i)
		results[id] = hourly(domain.Stats{
			Load: domain.Block{domain.Sample(i)},
			VIFs: map[string]domain.Instances{"rx": {{1}}},
		}, 1)
		objects = append(objects, vm(id, id))
	}

	fetcher := &mockFetcher{
		results: results,
		delay: func(string) time.Duration {
			return time.Duration(rand.Intn(3)) * time.Millisecond
		},
	}
	svc := NewService(fetcher, nil, WithConcurrency(16))

	report, err := svc.Run(context.Background(), objects)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Layers["Load"] != n {
		t.Errorf("expected Load layer count %d, got %d", n, report.Layers["Load"])
	}
	if report.Layers["Network 0 out"] != n {
		t.Errorf("expected Network 0 out layer count %d, got %d", n, report.Layers["Network 0 out"])
	}

	load, _ := report.Catalog.Lookup("Load")
	want := float64(n-1) / 2
	if diff := load.Values[0].Value - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected Load mean %v, got %v", want, load.Values[0].Value)
	}
}

func TestRun_RetriesTransientFetchErrors(t *testing.T) {
	fetcher := &mockFetcher{
		results:  map[string]*domain.StatsResult{"a": hourly(domain.Stats{Load: domain.Block{5}}, 1)},
		failOnce: map[string]error{"a": fmt.Errorf("vm.stats: %w", domain.ErrRateLimited)},
	}
	notifier := &recordingNotifier{}
	svc := NewService(fetcher, notifier, WithRetry(retry.Config{MaxAttempts: 2}))

	report, err := svc.Run(context.Background(), []domain.Object{vm("a", "a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.titles) != 0 {
		t.Errorf("expected no notifications, got %v", notifier.details)
	}
	if report.Layers["Load"] != 1 {
		t.Errorf("expected Load layer count 1, got %d", report.Layers["Load"])
	}
	if len(fetcher.vmIDs) != 2 {
		t.Errorf("expected 2 fetch attempts, got %d", len(fetcher.vmIDs))
	}
}

func TestRun_MisalignedCoresIsPerObjectFailure(t *testing.T) {
	fetcher := &mockFetcher{results: map[string]*domain.StatsResult{
		"good": hourly(domain.Stats{CPUs: domain.Instances{{1}, {3}}}, 1),
		"bad":  hourly(domain.Stats{CPUs: domain.Instances{{1}, {1, 2}}}, 1),
	}}
	notifier := &recordingNotifier{}
	svc := NewService(fetcher, notifier, WithConcurrency(1))

	report, err := svc.Run(context.Background(), []domain.Object{vm("good", "good"), vm("bad", "bad")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Failures) != 1 || !errors.Is(report.Failures[0].Err, domain.ErrMisalignedCores) {
		t.Fatalf("expected one ErrMisalignedCores failure, got %v", report.Failures)
	}
	if report.Layers["CPU 0"] != 1 {
		t.Errorf("expected CPU 0 layer count 1, got %d", report.Layers["CPU 0"])
	}
	all, _ := report.Catalog.Lookup("All CPUs")
	if got := all.Values[0].Value; got != 2 {
		t.Errorf("expected All CPUs 2, got %v", got)
	}
}
