package batch

import (
	"sort"
	"sync"
	"time"
)

// Stats aggregates the counters of a run. Every discovered file lands
// in exactly one of Processed, Skipped or Errors, so the three sum to
// Discovered once the run finishes.
type Stats struct {
	Discovered int `json:"discovered" yaml:"discovered"`
	Processed  int `json:"processed" yaml:"processed"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Errors     int `json:"errors" yaml:"errors"`

	// Timeouts and Interrupted are subsets of Errors
	Timeouts    int `json:"timeouts" yaml:"timeouts"`
	Interrupted int `json:"interrupted" yaml:"interrupted"`

	InputBytes  int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Done returns how many items have reached a terminal outcome.
func (s Stats) Done() int {
	return s.Processed + s.Skipped + s.Errors
}

// Aggregator folds item outcomes from concurrent workers into run
// counters. All methods are safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	stats    Stats
	failures []Failure
	start    time.Time
}

// NewAggregator returns an aggregator expecting the given number of
// discovered items.
func NewAggregator(discovered int) *Aggregator {
	return &Aggregator{
		stats: Stats{Discovered: discovered},
		start: time.Now(),
	}
}

// Record counts one terminal item outcome and returns the counters as
// they stand afterwards.
func (a *Aggregator) Record(res ItemResult) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch res.Outcome {
	case OutcomeProcessed:
		a.stats.Processed++
		a.stats.InputBytes += res.Item.Size
		a.stats.OutputBytes += res.OutBytes
	case OutcomeSkippedExisting, OutcomeSkippedCleaned:
		a.stats.Skipped++
	case OutcomeTimeout:
		a.stats.Errors++
		a.stats.Timeouts++
		a.failures = append(a.failures, failureOf(res))
	case OutcomeInterrupted:
		a.stats.Errors++
		a.stats.Interrupted++
		a.failures = append(a.failures, failureOf(res))
	default:
		a.stats.Errors++
		a.failures = append(a.failures, failureOf(res))
	}

	stats := a.stats
	stats.Duration = time.Since(a.start)
	return stats
}

// Snapshot returns a copy of the counters with the elapsed run duration
// filled in.
func (a *Aggregator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.stats
	stats.Duration = time.Since(a.start)
	return stats
}

// Failures returns the recorded failures sorted by input path.
func (a *Aggregator) Failures() []Failure {
	a.mu.Lock()
	defer a.mu.Unlock()

	failures := make([]Failure, len(a.failures))
	copy(failures, a.failures)

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})

	return failures
}

func failureOf(res ItemResult) Failure {
	reason := res.Outcome.String()
	if res.Err != nil {
		reason = res.Err.Error()
	}
	return Failure{Path: res.Item.Input, Reason: reason}
}
