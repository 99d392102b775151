package config

import (
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	// Helper function to clean environment variables after each test
	cleanup := func() {
		envVars := []string{
			"WBCLEAN_INPUT",
			"WBCLEAN_OUTPUT_DIR",
			"WBCLEAN_SUFFIX",
			"WBCLEAN_RECURSIVE",
			"WBCLEAN_FORCE",
			"WBCLEAN_JOBS",
			"WBCLEAN_GRAYSCALE",
			"WBCLEAN_LOWERCASE_EXT",
			"WBCLEAN_TIMEOUT",
			"WBCLEAN_RATE_LIMIT",
			"WBCLEAN_ENGINE",
			"WBCLEAN_DRY_RUN",
			"WBCLEAN_FORMAT",
			"WBCLEAN_NO_PROGRESS",
			"WBCLEAN_NO_COLOR",
			"WBCLEAN_LOG_JSON",
			"WBCLEAN_VERBOSE",
		}
		for _, env := range envVars {
			os.Unsetenv(env)
		}
	}

	tests := []struct {
		name     string
		envVars  map[string]string
		expected Config
		wantErr  bool
		errMsg   string
	}{
		{
			name: "default configuration",
			expected: Config{
				InputPath: ".",
				Suffix:    "_cleaned",
				Jobs:      4,
				Timeout:   5 * time.Minute,
				Format:    "text",
			},
		},
		{
			name: "configuration from environment variables",
			envVars: map[string]string{
				"WBCLEAN_INPUT":         "/boards",
				"WBCLEAN_OUTPUT_DIR":    "/boards/clean",
				"WBCLEAN_SUFFIX":        "_wb",
				"WBCLEAN_RECURSIVE":     "true",
				"WBCLEAN_FORCE":         "true",
				"WBCLEAN_JOBS":          "2",
				"WBCLEAN_GRAYSCALE":     "true",
				"WBCLEAN_LOWERCASE_EXT": "true",
				"WBCLEAN_TIMEOUT":       "90s",
				"WBCLEAN_RATE_LIMIT":    "5",
				"WBCLEAN_ENGINE":        "/opt/magick",
				"WBCLEAN_DRY_RUN":       "true",
				"WBCLEAN_FORMAT":        "json",
				"WBCLEAN_NO_PROGRESS":   "true",
				"WBCLEAN_NO_COLOR":      "true",
				"WBCLEAN_VERBOSE":       "vv",
			},
			expected: Config{
				InputPath:    "/boards",
				OutputDir:    "/boards/clean",
				Suffix:       "_wb",
				Recursive:    true,
				Force:        true,
				Jobs:         2,
				Grayscale:    true,
				LowercaseExt: true,
				Timeout:      90 * time.Second,
				RateLimit:    5,
				EngineBinary: "/opt/magick",
				DryRun:       true,
				Format:       "json",
				NoProgress:   true,
				NoColor:      true,
				Verbose:      2,
			},
		},
		{
			name: "invalid jobs count - negative",
			envVars: map[string]string{
				"WBCLEAN_JOBS": "-1",
			},
			wantErr: true,
			errMsg:  "jobs count must be positive",
		},
		{
			name: "jobs count zero falls back to default",
			envVars: map[string]string{
				"WBCLEAN_JOBS": "0",
			},
			expected: Config{
				InputPath: ".",
				Suffix:    "_cleaned",
				Jobs:      4,
				Timeout:   5 * time.Minute,
				Format:    "text",
			},
		},
		{
			name: "maximum jobs limit",
			envVars: map[string]string{
				"WBCLEAN_JOBS": "1000000",
			},
			wantErr: true,
			errMsg:  "jobs count cannot exceed system CPU count * 4",
		},
		{
			name: "invalid summary format",
			envVars: map[string]string{
				"WBCLEAN_FORMAT": "xml",
			},
			wantErr: true,
			errMsg:  "invalid summary format: must be one of [text json yaml]",
		},
		{
			name: "empty suffix",
			envVars: map[string]string{
				"WBCLEAN_SUFFIX": "",
			},
			wantErr: true,
			errMsg:  "suffix must not be empty",
		},
		{
			name: "suffix with path separator",
			envVars: map[string]string{
				"WBCLEAN_SUFFIX": "clean/ed",
			},
			wantErr: true,
			errMsg:  "suffix must not contain path separators",
		},
		{
			name: "invalid timeout - zero",
			envVars: map[string]string{
				"WBCLEAN_TIMEOUT": "0s",
			},
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name: "invalid rate limit - negative",
			envVars: map[string]string{
				"WBCLEAN_RATE_LIMIT": "-1",
			},
			wantErr: true,
			errMsg:  "rate limit must be non-negative",
		},
		{
			name: "multiple verbosity levels",
			envVars: map[string]string{
				"WBCLEAN_VERBOSE": "vvv",
			},
			expected: Config{
				InputPath: ".",
				Suffix:    "_cleaned",
				Jobs:      4,
				Timeout:   5 * time.Minute,
				Format:    "text",
				Verbose:   3,
			},
		},
		{
			name: "numeric verbosity level",
			envVars: map[string]string{
				"WBCLEAN_VERBOSE": "2",
			},
			expected: Config{
				InputPath: ".",
				Suffix:    "_cleaned",
				Jobs:      4,
				Timeout:   5 * time.Minute,
				Format:    "text",
				Verbose:   2,
			},
		},
		{
			name: "boolean parsing - various true values",
			envVars: map[string]string{
				"WBCLEAN_NO_PROGRESS": "true",
				"WBCLEAN_NO_COLOR":    "1",
			},
			expected: Config{
				InputPath:  ".",
				Suffix:     "_cleaned",
				Jobs:       4,
				Timeout:    5 * time.Minute,
				Format:     "text",
				NoProgress: true,
				NoColor:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean environment before each test
			cleanup()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected.InputPath, cfg.InputPath)
			assert.Equal(t, tt.expected.OutputDir, cfg.OutputDir)
			assert.Equal(t, tt.expected.Suffix, cfg.Suffix)
			assert.Equal(t, tt.expected.Recursive, cfg.Recursive)
			assert.Equal(t, tt.expected.Force, cfg.Force)
			assert.Equal(t, tt.expected.Jobs, cfg.Jobs)
			assert.Equal(t, tt.expected.Grayscale, cfg.Grayscale)
			assert.Equal(t, tt.expected.LowercaseExt, cfg.LowercaseExt)
			assert.Equal(t, tt.expected.Timeout, cfg.Timeout)
			assert.Equal(t, tt.expected.RateLimit, cfg.RateLimit)
			assert.Equal(t, tt.expected.EngineBinary, cfg.EngineBinary)
			assert.Equal(t, tt.expected.DryRun, cfg.DryRun)
			assert.Equal(t, tt.expected.Format, cfg.Format)
			assert.Equal(t, tt.expected.NoProgress, cfg.NoProgress)
			assert.Equal(t, tt.expected.NoColor, cfg.NoColor)
			assert.Equal(t, tt.expected.Verbose, cfg.Verbose)
		})
	}

	cleanup()
}

func TestValidateConfig(t *testing.T) {
	maxJobs := runtime.NumCPU() * MaxJobsMultiplier

	valid := Config{
		InputPath: ".",
		Suffix:    "_cleaned",
		Jobs:      4,
		Timeout:   time.Minute,
		Format:    "text",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid configuration",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid jobs count - negative",
			mutate:  func(c *Config) { c.Jobs = -1 },
			wantErr: true,
			errMsg:  "jobs count must be positive",
		},
		{
			name:    "invalid jobs count - exceeds max",
			mutate:  func(c *Config) { c.Jobs = maxJobs + 1 },
			wantErr: true,
			errMsg:  "jobs count cannot exceed system CPU count * 4",
		},
		{
			name:    "empty suffix",
			mutate:  func(c *Config) { c.Suffix = "" },
			wantErr: true,
			errMsg:  "suffix must not be empty",
		},
		{
			name:    "suffix with separator",
			mutate:  func(c *Config) { c.Suffix = `a\b` },
			wantErr: true,
			errMsg:  "suffix must not contain path separators",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Format = "csv" },
			wantErr: true,
			errMsg:  "invalid summary format",
		},
		{
			name:    "invalid timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name:    "invalid rate limit",
			mutate:  func(c *Config) { c.RateLimit = -1 },
			wantErr: true,
			errMsg:  "rate limit must be non-negative",
		},
		{
			name:    "high verbosity is allowed",
			mutate:  func(c *Config) { c.Verbose = 4 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
