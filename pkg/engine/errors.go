package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineNotFound indicates no usable engine binary is installed.
	// It is fatal: the run must not start without an engine.
	ErrEngineNotFound = errors.New("image engine not found")

	// ErrTimeout indicates an invocation exceeded its time budget and
	// was killed
	ErrTimeout = errors.New("engine invocation timed out")
)

// EngineError reports a failed engine invocation together with the
// diagnostics the engine wrote to stderr.
type EngineError struct {
	Input  string
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("engine failed on %s: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("engine failed on %s: %v: %s", e.Input, e.Err, e.Stderr)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
