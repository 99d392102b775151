package discovery

import "errors"

var (
	// ErrNotFound reports that the input path does not exist.
	// Fatal for the whole run.
	ErrNotFound = errors.New("input path not found")

	// ErrUnsupported reports a file whose extension is outside the
	// supported image set.
	ErrUnsupported = errors.New("unsupported file format")
)
