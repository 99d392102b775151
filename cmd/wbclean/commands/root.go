/*
Package commands implements the CLI command tree for wbclean. The root
command runs a batch cleanup over the given input path; subcommands cover
engine diagnostics and version information.
*/
package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/saraf/clean-whiteboard-images/cmd/wbclean/app"
	"github.com/saraf/clean-whiteboard-images/internal/config"
)

// ErrRunFailed marks a run that finished with per-file errors or was
// interrupted. The summary already told the full story on stdout, so
// main only maps this to a non-zero exit code.
var ErrRunFailed = errors.New("run completed with errors")

// rootOptions holds flag values before they are merged over the
// environment-backed configuration.
type rootOptions struct {
	outputDir    string
	suffix       string
	recursive    bool
	force        bool
	jobs         int
	grayscale    bool
	lowercaseExt bool
	timeout      time.Duration
	rateLimit    int
	engineBinary string
	dryRun       bool
	format       string
	noProgress   bool
	noColor      bool
	logJSON      bool
	verbosity    int
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "wbclean [flags] [input_path]",
		Short: "Whiteboard photo batch cleaner",
		Long: `wbclean turns photographed whiteboards into clean, readable images.

It takes a directory (or a single image), pushes every photo through an
ImageMagick cleanup chain that lifts the pen strokes off the background,
and writes the result next to the original with a "_cleaned" suffix.
Files that already have a cleaned counterpart are skipped, so rerunning
over the same tree only picks up new photos.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.outputDir, "output", "o", "",
		"output directory (default: next to each input)")
	flags.StringVarP(&opts.suffix, "suffix", "s", config.DefaultSuffix,
		"suffix appended to output filenames")
	flags.BoolVarP(&opts.recursive, "recursive", "r", false,
		"recurse into subdirectories")
	flags.BoolVarP(&opts.force, "force", "f", false,
		"overwrite existing outputs")
	flags.IntVarP(&opts.jobs, "jobs", "j", config.DefaultJobs,
		"number of images cleaned in parallel")
	flags.BoolVarP(&opts.grayscale, "grayscale", "g", false,
		"produce grayscale output")
	flags.BoolVar(&opts.lowercaseExt, "lowercase-ext", false,
		"lowercase the output file extension")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout,
		"per-image engine timeout")
	flags.IntVar(&opts.rateLimit, "rate-limit", 0,
		"max engine launches per second (0 = unlimited)")
	flags.StringVar(&opts.engineBinary, "engine", "",
		"image engine binary (default: magick or convert from PATH)")
	flags.BoolVar(&opts.dryRun, "dry-run", false,
		"resolve and report without cleaning anything")
	flags.StringVar(&opts.format, "format", "text",
		"summary format: text|json|yaml")
	flags.BoolVar(&opts.noProgress, "no-progress", false,
		"disable progress reporting")
	flags.BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")
	flags.BoolVar(&opts.logJSON, "log-json", false,
		"emit JSON log lines")

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v",
		"verbose output (can be used multiple times)")

	rootCmd.AddCommand(
		newCheckCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// runClean executes the batch cleanup that is the root command.
func runClean(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	applyFlags(&cfg, cmd, opts)
	if len(args) == 1 {
		cfg.InputPath = args[0]
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = config.DefaultJobs
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	application, err := app.New(&cfg)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	summary, err := application.Run()
	if err != nil {
		return err
	}

	if summary.Stats.Errors > 0 || summary.Interrupted {
		return ErrRunFailed
	}
	return nil
}

// applyFlags lays explicitly set flags over the environment-backed
// configuration, so WBCLEAN_* variables back every flag without flag
// defaults clobbering them.
func applyFlags(cfg *config.Config, cmd *cobra.Command, opts *rootOptions) {
	flags := cmd.Flags()

	if flags.Changed("output") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("suffix") {
		cfg.Suffix = opts.suffix
	}
	if flags.Changed("recursive") {
		cfg.Recursive = opts.recursive
	}
	if flags.Changed("force") {
		cfg.Force = opts.force
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if flags.Changed("grayscale") {
		cfg.Grayscale = opts.grayscale
	}
	if flags.Changed("lowercase-ext") {
		cfg.LowercaseExt = opts.lowercaseExt
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = opts.rateLimit
	}
	if flags.Changed("engine") {
		cfg.EngineBinary = opts.engineBinary
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = opts.noProgress
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.noColor
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = opts.logJSON
	}
	if opts.verbosity > 0 {
		cfg.Verbose = opts.verbosity
	}
}
