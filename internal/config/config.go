/*
Package config provides configuration management for the wbclean application.
It handles both environment variables and validation of all configuration
parameters.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Environment Variables:

	WBCLEAN_INPUT          Input file or directory
	WBCLEAN_OUTPUT_DIR     Output directory override
	WBCLEAN_SUFFIX         Output filename suffix
	WBCLEAN_RECURSIVE      Recurse into subdirectories
	WBCLEAN_FORCE          Overwrite existing outputs
	WBCLEAN_JOBS           Worker pool size
	WBCLEAN_GRAYSCALE      Grayscale transform mode
	WBCLEAN_LOWERCASE_EXT  Lowercase output extensions
	WBCLEAN_TIMEOUT        Per-image engine timeout
	WBCLEAN_RATE_LIMIT     Engine launches per second (0 = unlimited)
	WBCLEAN_ENGINE         Engine binary override
	WBCLEAN_DRY_RUN        Resolve and report without transforming
	WBCLEAN_FORMAT         Summary format: text|json|yaml
	WBCLEAN_NO_PROGRESS    Disable progress reporting
	WBCLEAN_NO_COLOR       Disable colored output
	WBCLEAN_LOG_JSON       Emit JSON log lines
	WBCLEAN_VERBOSE        Verbosity level (number of 'v's)

Default Values:

	Suffix:     "_cleaned"
	Jobs:       4
	Timeout:    5m
	Format:     "text"
	RateLimit:  0 (unlimited)
*/
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application
type Config struct {
	// InputPath is the file or directory to clean
	InputPath string

	// OutputDir redirects outputs away from each input's directory
	// (empty writes next to the input)
	OutputDir string

	// Suffix is inserted between the filename stem and its extension
	Suffix string

	// Recursive walks subdirectories when InputPath is a directory
	Recursive bool

	// Force overwrites existing outputs instead of skipping them
	Force bool

	// Jobs is the worker pool size
	Jobs int

	// Grayscale selects the grayscale transform variant
	Grayscale bool

	// LowercaseExt lowercases the output file extension
	LowercaseExt bool

	// Timeout bounds a single engine invocation
	Timeout time.Duration

	// RateLimit is the maximum number of engine launches per second
	// (0 for unlimited)
	RateLimit int

	// EngineBinary overrides engine binary resolution
	EngineBinary string

	// DryRun resolves and reports every decision without invoking the engine
	DryRun bool

	// Format specifies the summary format (text, json, or yaml)
	Format string

	// NoProgress disables progress reporting
	NoProgress bool

	// NoColor disables colored output
	NoColor bool

	// LogJSON emits machine-readable log lines
	LogJSON bool

	// Verbose sets the verbosity level
	Verbose int
}

// validFormats contains the list of supported summary formats
var validFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("input", ".")
	v.SetDefault("suffix", DefaultSuffix)
	v.SetDefault("jobs", DefaultJobs)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("format", "text")
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("log_json", false)
	v.SetDefault("verbose", 0)

	// Configure environment variables
	v.SetEnvPrefix("WBCLEAN")
	v.AutomaticEnv()

	// Map environment variables to config fields
	v.BindEnv("input")
	v.BindEnv("output_dir")
	v.BindEnv("suffix")
	v.BindEnv("recursive")
	v.BindEnv("force")
	v.BindEnv("jobs")
	v.BindEnv("grayscale")
	v.BindEnv("lowercase_ext")
	v.BindEnv("timeout")
	v.BindEnv("rate_limit")
	v.BindEnv("engine")
	v.BindEnv("dry_run")
	v.BindEnv("format")
	v.BindEnv("no_progress")
	v.BindEnv("no_color")
	v.BindEnv("log_json")
	v.BindEnv("verbose")

	// Process verbosity level from string of 'v's
	if verboseStr := v.GetString("verbose"); verboseStr != "" {
		if n := strings.Count(verboseStr, "v"); n > 0 {
			v.Set("verbose", n)
		}
	}

	cfg := Config{
		InputPath:    v.GetString("input"),
		OutputDir:    v.GetString("output_dir"),
		Suffix:       v.GetString("suffix"),
		Recursive:    v.GetBool("recursive"),
		Force:        v.GetBool("force"),
		Jobs:         v.GetInt("jobs"),
		Grayscale:    v.GetBool("grayscale"),
		LowercaseExt: v.GetBool("lowercase_ext"),
		Timeout:      v.GetDuration("timeout"),
		RateLimit:    v.GetInt("rate_limit"),
		EngineBinary: v.GetString("engine"),
		DryRun:       v.GetBool("dry_run"),
		Format:       v.GetString("format"),
		NoProgress:   v.GetBool("no_progress"),
		NoColor:      v.GetBool("no_color"),
		LogJSON:      v.GetBool("log_json"),
		Verbose:      v.GetInt("verbose"),
	}

	// Handle special case for jobs=0
	if cfg.Jobs == 0 {
		cfg.Jobs = DefaultJobs
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	// Validate jobs count
	if c.Jobs < 0 {
		return fmt.Errorf("jobs count must be positive")
	}
	maxJobs := runtime.NumCPU() * MaxJobsMultiplier
	if c.Jobs > maxJobs {
		return fmt.Errorf("jobs count cannot exceed system CPU count * %d", MaxJobsMultiplier)
	}

	// Validate suffix
	if c.Suffix == "" {
		return fmt.Errorf("suffix must not be empty")
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix must not contain path separators")
	}

	// Validate summary format
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid summary format: must be one of [text json yaml]")
	}

	// Validate timeout
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	// Validate rate limit
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	return nil
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, OutputDir: %s, Suffix: %s, Recursive: %v, Force: %v, "+
			"Jobs: %d, Grayscale: %v, LowercaseExt: %v, Timeout: %s, RateLimit: %d, "+
			"Engine: %s, DryRun: %v, Format: %s, NoProgress: %v, NoColor: %v, Verbose: %d}",
		c.InputPath, c.OutputDir, c.Suffix, c.Recursive, c.Force,
		c.Jobs, c.Grayscale, c.LowercaseExt, c.Timeout, c.RateLimit,
		c.EngineBinary, c.DryRun, c.Format, c.NoProgress, c.NoColor, c.Verbose,
	)
}
