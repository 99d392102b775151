// Package config provides configuration management for the wbclean application.
// It handles environment variables, command-line flags, and validation of all
// configuration parameters.
//
// # Configuration Loading
//
// To load the configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// The following environment variables are supported:
//
//	WBCLEAN_INPUT          Input file or directory (default: ".")
//	WBCLEAN_OUTPUT_DIR     Output directory override (empty: next to input)
//	WBCLEAN_SUFFIX         Output filename suffix (default: "_cleaned")
//	WBCLEAN_RECURSIVE      Recurse into subdirectories (true/false)
//	WBCLEAN_FORCE          Overwrite existing outputs (true/false)
//	WBCLEAN_JOBS           Worker pool size (default: 4)
//	WBCLEAN_GRAYSCALE      Grayscale transform mode (true/false)
//	WBCLEAN_LOWERCASE_EXT  Lowercase output extensions (true/false)
//	WBCLEAN_TIMEOUT        Per-image engine timeout (default: 5m)
//	WBCLEAN_RATE_LIMIT     Engine launches per second (0 for unlimited)
//	WBCLEAN_ENGINE         Engine binary override
//	WBCLEAN_DRY_RUN        Report decisions without transforming (true/false)
//	WBCLEAN_FORMAT         Summary format: text|json|yaml
//	WBCLEAN_NO_PROGRESS    Disable progress reporting (true/false)
//	WBCLEAN_NO_COLOR       Disable colored output (true/false)
//	WBCLEAN_LOG_JSON       Emit JSON log lines (true/false)
//	WBCLEAN_VERBOSE        Verbosity level (number of 'v's)
//
// # Example Usage
//
// Basic usage with default configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Using %d workers\n", cfg.Jobs)
//
// Setting environment variables:
//
//	os.Setenv("WBCLEAN_JOBS", "8")
//	os.Setenv("WBCLEAN_SUFFIX", "_clean")
//	os.Setenv("WBCLEAN_TIMEOUT", "2m")
//
//	cfg, err := config.Load()
//	// ...
//
// # Configuration Validation
//
// The package performs validation on all configuration values:
//   - Jobs must be positive and not exceed CPU cores * 4
//   - Suffix must be non-empty and free of path separators
//   - Format must be one of: text, json, yaml
//   - Timeout must be positive
//   - RateLimit must be non-negative
//
// # Thread Safety
//
// The configuration is immutable after loading and is safe for concurrent
// access across multiple goroutines.
//
// # Precedence
//
// Command-line flags are applied on top of the loaded configuration by the
// command layer, so a flag always wins over its environment variable.
package config
