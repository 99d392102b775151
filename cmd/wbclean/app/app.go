/*
Package app provides the main application container and orchestration for
the wbclean application. It manages component lifecycle, coordinates a
cleanup run, and handles graceful shutdown.

The application container initializes and manages all core components:
- Logger for structured logging
- ImageMagick engine for the cleanup transform
- Batch runner for discovery, naming and concurrent processing
- Progress visualization
- Summary rendering

Usage:

	application, err := app.New(cfg)
	if err != nil {
	    log.Fatal(err)
	}
	defer application.Shutdown()

	summary, err := application.Run()
*/
package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/saraf/clean-whiteboard-images/internal/config"
	"github.com/saraf/clean-whiteboard-images/pkg/batch"
	"github.com/saraf/clean-whiteboard-images/pkg/engine"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
	"github.com/saraf/clean-whiteboard-images/pkg/progress"
	"github.com/saraf/clean-whiteboard-images/pkg/report"
)

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger

	fs       afero.Fs
	engine   *engine.Magick
	runner   *batch.Runner
	progress progress.Tracker

	ctx    context.Context
	cancel context.CancelFunc
	lock   *flock.Flock

	shutdownOnce sync.Once
}

// New creates a new application instance. It fails when the
// configuration cannot be satisfied, most notably when no engine
// binary is installed.
func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config: cfg,
		fs:     afero.NewOsFs(),
		ctx:    ctx,
		cancel: cancel,
	}

	app.initLogger()

	if err := app.initComponents(); err != nil {
		cancel()
		return nil, err
	}

	app.setupSignalHandling()

	app.log.WithFields(logger.Fields{
		"input": cfg.InputPath,
		"jobs":  cfg.Jobs,
	}).Debug("Application initialized")

	return app, nil
}

// Run executes one cleanup pass over the configured input path and
// renders its summary to stdout. The returned summary is partial when
// the run was interrupted.
func (a *App) Run() (*batch.Summary, error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logger.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic")
		}
	}()

	if err := a.acquireLock(); err != nil {
		return nil, err
	}
	defer a.releaseLock()

	a.log.WithFields(logger.Fields{
		"input":  a.config.InputPath,
		"mode":   a.engine.Mode().String(),
		"jobs":   a.config.Jobs,
		"dryRun": a.config.DryRun,
	}).Info("Starting cleanup run")

	if a.progress != nil {
		a.progress.Start("Scanning for whiteboard photos...")
	}

	summary, err := a.runner.Run(a.ctx)
	if err != nil {
		if a.progress != nil {
			a.progress.Fail(fmt.Sprintf("Run failed: %v", err))
		}
		return nil, err
	}

	a.finishProgress(summary)

	out, err := a.renderSummary(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}
	if err := writeOutput(out); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"discovered": summary.Stats.Discovered,
		"processed":  summary.Stats.Processed,
		"skipped":    summary.Stats.Skipped,
		"errors":     summary.Stats.Errors,
		"duration":   summary.Stats.Duration.String(),
	}).Info("Cleanup run complete")

	return summary, nil
}

// Shutdown cancels any in-flight run and stops the progress display.
// It is safe to call more than once.
func (a *App) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.cancel()

		if a.progress != nil {
			a.progress.Stop()
		}

		a.log.Debug("Shutdown complete")
	})
	return nil
}

// initLogger initializes the application logger
func (a *App) initLogger() {
	a.log = logger.NewLogger(logger.Config{
		Verbosity: a.config.Verbose,
		JSON:      a.config.LogJSON,
		Output:    os.Stderr,
	})

	a.log.WithFields(logger.Fields{
		"verbosity": a.config.Verbose,
	}).Debug("Logger initialized")
}

// initComponents initializes all application components
func (a *App) initComponents() error {
	a.log.Debug("Initializing application components")

	mode := engine.ModeColor
	if a.config.Grayscale {
		mode = engine.ModeGray
	}

	eng, err := engine.NewMagick(engine.Options{
		Binary:  a.config.EngineBinary,
		Mode:    mode,
		Timeout: a.config.Timeout,
	}, a.fs, a.log)
	if err != nil {
		return err
	}
	a.engine = eng

	a.runner = batch.NewRunner(batch.Options{
		Root:         a.config.InputPath,
		OutputDir:    a.config.OutputDir,
		Suffix:       a.config.Suffix,
		Recursive:    a.config.Recursive,
		Force:        a.config.Force,
		DryRun:       a.config.DryRun,
		LowercaseExt: a.config.LowercaseExt,
		Jobs:         a.config.Jobs,
		RateLimit:    a.config.RateLimit,
	}, eng, a.fs, a.log, a.onEvent)

	if !a.config.NoProgress {
		tracker := progress.New(progress.Config{
			Style:       progress.StyleBar,
			ShowStats:   true,
			NoColor:     a.config.NoColor,
			RefreshRate: 100 * time.Millisecond,
		}, a.log)
		if tracker.IsSupportedTerminal() {
			a.progress = tracker
		}
	}

	a.log.Debug("Components initialized successfully")
	return nil
}

// onEvent feeds finished-item events from the batch runner into the
// progress display.
func (a *App) onEvent(e batch.Event) {
	if a.progress == nil {
		return
	}

	a.progress.Update(progress.Status{
		Done:        e.Done,
		Total:       e.Total,
		Processed:   e.Stats.Processed,
		Skipped:     e.Stats.Skipped,
		Errors:      e.Stats.Errors,
		CurrentItem: e.Result.Item.Input,
		OutputBytes: e.Stats.OutputBytes,
	})
}

// finishProgress ends the progress display with a message matching the
// run outcome.
func (a *App) finishProgress(summary *batch.Summary) {
	if a.progress == nil {
		return
	}

	switch {
	case summary.Interrupted:
		a.progress.Fail("Interrupted")
	case summary.Stats.Errors > 0:
		a.progress.Fail(fmt.Sprintf("Done with %d errors", summary.Stats.Errors))
	default:
		a.progress.Complete("Done")
	}
}

// renderSummary renders the run summary in the configured format.
func (a *App) renderSummary(summary *batch.Summary) (string, error) {
	renderer := report.NewRenderer(report.Config{
		Format:    report.Format(a.config.Format),
		WithColor: !a.config.NoColor,
		Engine:    a.engineLabel(),
	}, a.log)

	return renderer.Render(summary)
}

// engineLabel identifies the engine in the summary header, preferring
// its version line over the bare binary path. Dry runs never invoke the
// engine, not even for the version probe.
func (a *App) engineLabel() string {
	if a.config.DryRun {
		return a.engine.Binary()
	}

	version, err := a.engine.Version(a.ctx)
	if err != nil || version == "" {
		return a.engine.Binary()
	}
	return version
}

// acquireLock takes the per-root run lock so two concurrent runs cannot
// race on identical output paths.
func (a *App) acquireLock() error {
	root, err := filepath.Abs(a.config.InputPath)
	if err != nil {
		root = a.config.InputPath
	}

	dir := lockDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare lock directory: %w", err)
	}

	a.lock = flock.New(filepath.Join(dir, lockName(root)))

	a.log.WithFields(logger.Fields{
		"path": a.lock.Path(),
		"root": root,
	}).Debug("Acquiring run lock")

	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another wbclean run is already processing %s", root)
	}

	return nil
}

// releaseLock releases the run lock if one is held.
func (a *App) releaseLock() {
	if a.lock == nil {
		return
	}

	if err := a.lock.Unlock(); err != nil {
		a.log.WithFields(logger.Fields{
			"path":  a.lock.Path(),
			"error": err.Error(),
		}).Warn("Failed to release run lock")
	}
	a.lock = nil
}

// lockDir returns the directory holding run locks, preferring the user
// cache dir over the system temp dir.
func lockDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "wbclean")
	}
	return filepath.Join(os.TempDir(), "wbclean")
}

// lockName derives a stable lock file name from the input root.
func lockName(root string) string {
	sum := sha256.Sum256([]byte(root))
	return fmt.Sprintf("run-%x.lock", sum[:8])
}

// writeOutput prints the rendered summary on stdout, keeping stderr for
// logs and progress.
func writeOutput(content string) error {
	_, err := fmt.Fprintln(os.Stdout, strings.TrimRight(content, "\n"))
	return err
}
