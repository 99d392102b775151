package progress

import "time"

// Style selects the progress visualization
type Style string

const (
	// StyleBar shows a progress bar with percentage
	StyleBar Style = "bar"

	// StyleSimple shows plain text progress, safe for non-terminals
	StyleSimple Style = "simple"
)

// Config holds the configuration for progress display
type Config struct {
	// Style defines how progress should be displayed
	Style Style

	// Width is the terminal width to render into (0 = auto-detect)
	Width int

	// ShowStats appends live run counters to the progress line
	ShowStats bool

	// NoColor disables colored output
	NoColor bool

	// RefreshRate defines how often the display redraws
	RefreshRate time.Duration

	// HideAfterComplete removes the progress line after completion
	HideAfterComplete bool
}

// Status is a point-in-time view of a cleanup run.
type Status struct {
	// Done counts items that reached a terminal outcome
	Done int

	// Total is the number of discovered items
	Total int

	// Per-outcome counters
	Processed int
	Skipped   int
	Errors    int

	// CurrentItem is the most recently finished file
	CurrentItem string

	// OutputBytes counts cleaned bytes written so far
	OutputBytes int64
}

// Statistics carries values derived from Status for rendering.
type Statistics struct {
	Elapsed time.Duration
	Percent float64
	Rate    float64
}

// Tracker drives a live progress display for a cleanup run.
type Tracker interface {
	// Start begins the display with an initial message
	Start(message string)

	// Update redraws the display with a new run status
	Update(status Status)

	// Complete ends the display, leaving a final message visible
	Complete(message string)

	// Fail ends the display with a failure message
	Fail(message string)

	// Stop ends the display and clears the line
	Stop()

	// IsSupportedTerminal checks if the output supports live redraw
	IsSupportedTerminal() bool
}
