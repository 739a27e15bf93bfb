// Package run executes one aggregation run over a selection of hosts or
// VMs.
//
// Stats are fetched concurrently, one call per selected object. Fetch
// results are delivered over a channel to a single merge goroutine, which
// is the only writer of the run's aggregate. Per-object failures are
// reported through the Notifier and recorded in the Report; they never
// abort the run.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"nathanbeddoewebdev/xostats/internal/retry"
	"nathanbeddoewebdev/xostats/internal/stats/aggregate"
	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency bounds the number of in-flight stats fetches.
	DefaultConcurrency = 8

	// ErrorTitle is the notification title for per-object failures.
	ErrorTitle = "Stats dashboard error"
)

// Fetcher retrieves raw stats for one object.
type Fetcher interface {
	HostStats(ctx context.Context, id string, granularity domain.Granularity) (*domain.StatsResult, error)
	VMStats(ctx context.Context, id string, granularity domain.Granularity) (*domain.StatsResult, error)
}

// Notifier surfaces non-fatal per-object failures to the user.
type Notifier interface {
	ReportError(title, detail string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(title, detail string)

func (f NotifierFunc) ReportError(title, detail string) { f(title, detail) }

// Failure records why one object did not contribute to the run.
type Failure struct {
	Object domain.Object
	Err    error
}

// Report is the outcome of a run.
type Report struct {
	Objects  []domain.Object
	Catalog  domain.Catalog
	Layers   map[string]int
	Failures []Failure
	Duration time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds the number of parallel fetches. Values below 1
// are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// WithRetry sets the retry policy used for each fetch.
func WithRetry(cfg retry.Config) Option {
	return func(s *Service) { s.retry = cfg }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service runs aggregations against a Fetcher.
type Service struct {
	fetcher     Fetcher
	notifier    Notifier
	logger      *slog.Logger
	retry       retry.Config
	concurrency int
}

// NewService creates a Service. A nil notifier discards notifications.
func NewService(fetcher Fetcher, notifier Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = NotifierFunc(func(string, string) {})
	}
	s := &Service{
		fetcher:     fetcher,
		notifier:    notifier,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		retry:       retry.DefaultConfig(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome struct {
	object domain.Object
	result *domain.StatsResult
	err    error
}

// Run fetches stats for every object and aggregates them. The type of the
// first object selects the fetch call for the whole batch. Run returns an
// error only for an empty selection; everything else is reported per
// object in the Report.
func (s *Service) Run(ctx context.Context, objects []domain.Object) (*Report, error) {
	if len(objects) == 0 {
		return nil, domain.ErrEmptySelection
	}

	started := time.Now()
	fetch := s.fetchFunc(objects[0].Type)
	s.logger.Info("aggregation run started",
		"objects", len(objects),
		"type", objects[0].Type,
	)

	outcomes := make(chan outcome)
	agg := aggregate.New()
	report := &Report{Objects: objects}

	merged := make(chan struct{})
	go func() {
		defer close(merged)
		for o := range outcomes {
			if err := s.merge(agg, o); err != nil {
				report.Failures = append(report.Failures, Failure{Object: o.object, Err: err})
				s.notifier.ReportError(ErrorTitle, "Unable to fetch stats for "+o.object.Label())
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, obj := range objects {
		g.Go(func() error {
			res, err := retry.DoValue(ctx, s.retry, retry.IsRetryable, func() (*domain.StatsResult, error) {
				return fetch(ctx, obj.ID, domain.GranularityHours)
			})
			outcomes <- outcome{object: obj, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)
	<-merged

	report.Catalog = agg.Catalog()
	report.Layers = agg.LayerCounts()
	report.Duration = time.Since(started)

	s.logger.Info("aggregation run finished",
		"metrics", len(report.Catalog),
		"failures", len(report.Failures),
		"duration", report.Duration,
	)
	return report, nil
}

func (s *Service) fetchFunc(t domain.ObjectType) func(context.Context, string, domain.Granularity) (*domain.StatsResult, error) {
	if t == domain.ObjectHost {
		return s.fetcher.HostStats
	}
	return s.fetcher.VMStats
}

// merge folds one fetch outcome into the aggregate. It must only be
// called from the merge goroutine.
func (s *Service) merge(agg *aggregate.Aggregate, o outcome) error {
	log := s.logger.With("object", o.object.ID, "label", o.object.Label())

	if o.err != nil {
		err := fmt.Errorf("%w: %w", domain.ErrFetchRejected, o.err)
		log.Warn("stats fetch failed", "error", o.err)
		return err
	}
	if o.result != nil && o.result.Stats != nil && len(o.result.Stats.Unknown) > 0 {
		log.Debug("ignoring unknown stats fields", "fields", o.result.Stats.Unknown)
	}

	if err := agg.Merge(o.result); err != nil {
		if errors.Is(err, domain.ErrMisalignedCores) {
			log.Warn("cpu series could not be combined", "error", err)
		} else {
			log.Warn("stats payload rejected", "error", err)
		}
		return err
	}

	log.Debug("stats merged", "metrics", agg.Len())
	return nil
}
