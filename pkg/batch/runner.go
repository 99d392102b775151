/*
Package batch orchestrates a cleanup run end to end: it discovers the
work list, resolves output names, fans the items out to a worker pool
that invokes the image engine, and aggregates per-item outcomes into
run statistics.

Items are isolated. A failed or timed-out transform is recorded against
its own file and never aborts the rest of the run; only a missing input
path or a broken pool stops a run before completion. Cancelling the run
context stops dispatch, lets in-flight transforms wind down, and
records everything that never ran as interrupted, so the final counters
always account for every discovered file.
*/
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/saraf/clean-whiteboard-images/pkg/discovery"
	"github.com/saraf/clean-whiteboard-images/pkg/engine"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
	"github.com/saraf/clean-whiteboard-images/pkg/naming"
	"github.com/saraf/clean-whiteboard-images/pkg/worker"
)

// Options configures a batch run.
type Options struct {
	// Root is the input path, a directory or a single image file
	Root string

	// OutputDir redirects outputs to a separate tree. Empty means next
	// to each input.
	OutputDir string

	// Suffix is appended to the stem of every output name
	Suffix string

	// Recursive walks subdirectories of Root
	Recursive bool

	// Force reprocesses inputs whose output already exists
	Force bool

	// DryRun resolves and reports the work list without invoking the
	// engine
	DryRun bool

	// LowercaseExt lowercases the extension of output names
	LowercaseExt bool

	// Jobs is the worker pool size
	Jobs int

	// RateLimit caps engine starts per second, 0 for unlimited
	RateLimit int
}

// Runner executes cleanup runs.
type Runner struct {
	opts       Options
	fs         afero.Fs
	log        logger.Logger
	engine     engine.Engine
	discoverer discovery.Discoverer
	resolver   naming.Resolver
	onEvent    func(Event)
}

// NewRunner wires a runner from its parts. The event handler receives
// one call per finished item and may be nil.
func NewRunner(opts Options, eng engine.Engine, fs afero.Fs, log logger.Logger, onEvent func(Event)) *Runner {
	pruneDirs := []string{}
	if opts.OutputDir != "" {
		// An output tree inside the input root must not feed back into
		// discovery.
		pruneDirs = append(pruneDirs, opts.OutputDir)
	}

	return &Runner{
		opts:   opts,
		fs:     fs,
		log:    log,
		engine: eng,
		discoverer: discovery.NewDiscoverer(discovery.Options{
			Suffix:    opts.Suffix,
			Recursive: opts.Recursive,
			PruneDirs: pruneDirs,
		}, fs, log),
		resolver: naming.NewResolver(naming.Options{
			OutputDir:    opts.OutputDir,
			Suffix:       opts.Suffix,
			LowercaseExt: opts.LowercaseExt,
		}, fs),
		onEvent: onEvent,
	}
}

// Run executes one full cleanup pass over the configured input path.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	log := r.log.WithFields(logger.Fields{"run_id": runID})

	scan, err := r.discoverer.Discover(ctx, r.opts.Root)
	if err != nil {
		return nil, err
	}

	total := scan.Total()
	agg := NewAggregator(total)

	log.WithFields(logger.Fields{
		"path":    r.opts.Root,
		"items":   len(scan.Items),
		"total":   total,
		"jobs":    r.opts.Jobs,
		"dry_run": r.opts.DryRun,
	}).Info("Starting cleanup run")

	// Inputs that already carry the cleaned suffix never reach the pool.
	for _, path := range scan.AlreadyCleaned {
		r.emit(agg, ItemResult{
			Item:    WorkItem{Input: path},
			Outcome: OutcomeSkippedCleaned,
		}, total)
	}

	items := r.buildItems(scan.Root, scan.Items, agg, total)

	if len(items) > 0 {
		if err := r.dispatch(ctx, items, agg, total); err != nil {
			return nil, err
		}
	}

	stats := agg.Snapshot()
	summary := &Summary{
		RunID:       runID,
		Root:        scan.Root,
		DryRun:      r.opts.DryRun,
		Stats:       stats,
		Failures:    agg.Failures(),
		Warnings:    convertWarnings(scan.Warnings),
		Interrupted: ctx.Err() != nil,
	}

	log.WithFields(logger.Fields{
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
		"errors":    stats.Errors,
		"duration":  stats.Duration.String(),
	}).Info("Cleanup run finished")

	return summary, nil
}

// buildItems resolves output paths and applies the pre-dispatch skip
// rules. Only items that need the engine are returned.
func (r *Runner) buildItems(root string, inputs []string, agg *Aggregator, total int) []WorkItem {
	items := make([]WorkItem, 0, len(inputs))

	for _, input := range inputs {
		output, err := r.resolver.Resolve(root, input)
		if err != nil {
			r.emit(agg, ItemResult{
				Item:    WorkItem{Input: input},
				Outcome: OutcomeFailed,
				Err:     err,
			}, total)
			continue
		}

		if r.resolver.ShouldSkip(output, r.opts.Force) {
			r.log.WithFields(logger.Fields{
				"input":  input,
				"output": output,
			}).Debug("Skipping input, output already exists")
			r.emit(agg, ItemResult{
				Item:    WorkItem{Input: input, Output: output},
				Outcome: OutcomeSkippedExisting,
			}, total)
			continue
		}

		item := WorkItem{Input: input, Output: output}
		if info, err := r.fs.Stat(input); err == nil {
			item.Size = info.Size()
		}
		items = append(items, item)
	}

	return items
}

// dispatch fans the work items out to the pool and waits for the last
// in-flight transform. Finished items record themselves; whatever the
// pool could not run is recorded afterwards so nothing goes missing.
func (r *Runner) dispatch(ctx context.Context, items []WorkItem, agg *Aggregator, total int) error {
	pool, err := worker.NewPool(worker.Config{
		Workers:   r.opts.Jobs,
		RateLimit: r.opts.RateLimit,
		Logger:    r.log,
	})
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}

	var submitErr error
	submitted := 0
	for i := range items {
		id := i
		item := items[i]

		err := pool.Submit(worker.Task{
			ID: id,
			Execute: func(taskCtx context.Context) (worker.Result, error) {
				res := r.processItem(taskCtx, item)
				r.emit(agg, res, total)
				return worker.Result{ID: id, Data: res}, nil
			},
		})
		if err != nil {
			// Submission stops once the run context is cancelled.
			submitErr = err
			break
		}
		submitted++
	}

	results, err := pool.Wait()
	if err != nil {
		return fmt.Errorf("wait for workers: %w", err)
	}

	// Tasks the pool aborted before execution carry a pool error instead
	// of an item result.
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		r.emit(agg, ItemResult{
			Item:    items[res.ID],
			Outcome: OutcomeInterrupted,
			Err:     res.Err,
		}, total)
	}

	// Items never submitted because the run was cancelled mid-loop.
	for _, item := range items[submitted:] {
		r.emit(agg, ItemResult{
			Item:    item,
			Outcome: OutcomeInterrupted,
			Err:     submitErr,
		}, total)
	}

	return nil
}

// processItem runs one input through the engine and classifies the
// resulting error shape. A panic is contained here so one bad item
// cannot take down its worker.
func (r *Runner) processItem(ctx context.Context, item WorkItem) (res ItemResult) {
	start := time.Now()
	res = ItemResult{Item: item}

	defer func() {
		res.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic processing %s: %v", item.Input, rec)
		}
	}()

	if ctx.Err() != nil {
		res.Outcome = OutcomeInterrupted
		res.Err = ctx.Err()
		return res
	}

	// Discovery only emits supported extensions; items built by other
	// callers still get rejected here rather than fed to the engine.
	if !discovery.IsSupported(item.Input) {
		res.Outcome = OutcomeUnsupported
		res.Err = fmt.Errorf("%s: %w", item.Input, discovery.ErrUnsupported)
		return res
	}

	if r.opts.DryRun {
		r.log.WithFields(logger.Fields{
			"input":  item.Input,
			"output": item.Output,
		}).Info("Would clean image")
		res.Outcome = OutcomeProcessed
		return res
	}

	if err := r.resolver.EnsureDir(item.Output); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	err := r.engine.Transform(ctx, item.Input, item.Output)
	switch {
	case err == nil:
		res.Outcome = OutcomeProcessed
		if info, serr := r.fs.Stat(item.Output); serr == nil {
			res.OutBytes = info.Size()
		}
	case errors.Is(err, engine.ErrTimeout):
		res.Outcome = OutcomeTimeout
		res.Err = err
	case errors.Is(err, context.Canceled):
		res.Outcome = OutcomeInterrupted
		res.Err = err
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
	}

	return res
}

// emit records a terminal outcome and notifies the progress handler.
func (r *Runner) emit(agg *Aggregator, res ItemResult, total int) {
	stats := agg.Record(res)

	if res.Err != nil {
		r.log.WithFields(logger.Fields{
			"input":   res.Item.Input,
			"outcome": res.Outcome.String(),
			"error":   res.Err.Error(),
		}).Warn("Item failed")
	}

	if r.onEvent != nil {
		r.onEvent(Event{Done: stats.Done(), Total: total, Result: res, Stats: stats})
	}
}

func convertWarnings(warnings []discovery.Warning) []Warning {
	if len(warnings) == 0 {
		return nil
	}

	converted := make([]Warning, 0, len(warnings))
	for _, w := range warnings {
		converted = append(converted, Warning{Path: w.Path, Reason: w.Err.Error()})
	}
	return converted
}
