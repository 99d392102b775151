package config

import "time"

// OutputFormat represents the supported summary formats
type OutputFormat string

const (
	// OutputFormatText represents the human-readable text summary
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON represents the JSON summary format
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML represents the YAML summary format
	OutputFormatYAML OutputFormat = "yaml"
)

// Constants for configuration limits and defaults
const (
	// DefaultSuffix is appended to the filename stem of every output
	DefaultSuffix = "_cleaned"

	// DefaultJobs is the default worker pool size
	DefaultJobs = 4

	// DefaultTimeout bounds a single engine invocation
	DefaultTimeout = 5 * time.Minute

	// MaxJobsMultiplier is the maximum multiple of CPU cores for the pool size
	MaxJobsMultiplier = 4
)
