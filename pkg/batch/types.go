package batch

import (
	"time"
)

// Outcome classifies how a single work item ended.
type Outcome int

const (
	// OutcomeProcessed means the engine produced a cleaned output
	OutcomeProcessed Outcome = iota

	// OutcomeSkippedExisting means the output already existed and force
	// was off
	OutcomeSkippedExisting

	// OutcomeSkippedCleaned means the input itself carries the cleaned
	// suffix
	OutcomeSkippedCleaned

	// OutcomeUnsupported means an item with an unsupported extension
	// reached a worker even though discovery filters those out
	OutcomeUnsupported

	// OutcomeFailed means the transform or output handling failed
	OutcomeFailed

	// OutcomeTimeout means the engine exceeded its time budget
	OutcomeTimeout

	// OutcomeInterrupted means the run was cancelled before the item
	// could finish
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkippedExisting:
		return "skipped (output exists)"
	case OutcomeSkippedCleaned:
		return "skipped (already cleaned)"
	case OutcomeUnsupported:
		return "unsupported format"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimeout:
		return "timed out"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// WorkItem pairs one input image with its resolved output path.
type WorkItem struct {
	Input  string
	Output string
	Size   int64
}

// ItemResult is the terminal record of one work item.
type ItemResult struct {
	Item     WorkItem
	Outcome  Outcome
	Err      error
	Duration time.Duration
	OutBytes int64
}

// Failure describes one item that ended in an error outcome.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Warning carries a non-fatal discovery problem into the final report.
type Warning struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Event reports progress after an item reaches a terminal outcome.
// Handlers are called from worker goroutines and must be safe for
// concurrent use.
type Event struct {
	Done   int
	Total  int
	Result ItemResult

	// Stats is a snapshot of the run counters taken as the item was
	// recorded
	Stats Stats
}

// Summary is the final report of a run.
type Summary struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Root        string    `json:"root" yaml:"root"`
	DryRun      bool      `json:"dry_run" yaml:"dry_run"`
	Stats       Stats     `json:"stats" yaml:"stats"`
	Failures    []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Warnings    []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Interrupted bool      `json:"interrupted" yaml:"interrupted"`
}
