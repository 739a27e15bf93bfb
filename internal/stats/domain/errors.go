package domain

import "errors"

// Sentinel errors for the stats dashboard. Callers wrap these so the CLI
// and TUI can classify failures without knowing about the transport.
//
//	return fmt.Errorf("failed to fetch stats for %s: %w", id, domain.ErrFetchRejected)
var (
	// ErrEmptySelection indicates an aggregation run was requested with
	// no selected objects.
	ErrEmptySelection = errors.New("no objects selected")

	// ErrMissingStats indicates the fetched payload had no stats field.
	ErrMissingStats = errors.New("no stats")

	// ErrMissingMemory indicates the payload had no memory series, which
	// is needed to anchor the first sample in time.
	ErrMissingMemory = errors.New("no memory series")

	// ErrFetchRejected indicates the remote stats call failed.
	ErrFetchRejected = errors.New("stats fetch rejected")

	// ErrMisalignedCores indicates per-core CPU series could not be merged
	// by position into the "All CPUs" series.
	ErrMisalignedCores = errors.New("misaligned cpu core series")

	// ErrMixedSelection indicates objects of different types were selected
	// together.
	ErrMixedSelection = errors.New("selection mixes hosts and VMs")

	// ErrNotRunning indicates a selected object is not running.
	ErrNotRunning = errors.New("object is not running")

	// ErrRunInFlight indicates the selection cannot change while an
	// aggregation run is loading.
	ErrRunInFlight = errors.New("aggregation run in progress")

	// ErrUnknownMetric indicates a metric key absent from the catalog.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to invalid,
	// expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the server throttled the request.
	ErrRateLimited = errors.New("rate limited")
)
