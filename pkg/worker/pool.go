/*
Package worker provides a fixed-size worker pool for concurrent task
processing with rate limiting and context cancellation support.

Task failures are data: a failed task produces a Result with Err set and
counts toward the pool's FailedTasks statistic, but it never aborts the
pool or the run. Callers inspect Results after Wait.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers:   4,
		RateLimit: 10, // 10 task starts/sec, 0 for unlimited
	})

	ctx := context.Background()
	pool.Start(ctx)

	pool.Submit(worker.Task{
		ID: 1,
		Execute: func(ctx context.Context) (worker.Result, error) {
			return worker.Result{ID: 1, Data: "processed"}, nil
		},
	})

	results, err := pool.Wait()
*/
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID uniquely identifies the task
	ID int

	// Execute is the function that performs the actual work
	// It receives a context for cancellation support
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	// Data holds the actual result data
	Data interface{}

	// Err is the task's failure, nil on success
	Err error

	// order is used internally to maintain submission order
	order int
}

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of task starts per second (0 for unlimited)
	RateLimit int

	// Logger receives pool-internal trace logging. Defaults to a no-op logger.
	Logger logger.Logger
}

// Pool defines the interface for a worker pool
type Pool interface {
	// Start initializes and starts the worker pool
	Start(context.Context) error

	// Submit adds a task to the pool for processing
	Submit(Task) error

	// Wait blocks until all submitted tasks are processed and returns
	// their results in submission order. Per-task failures are carried
	// inside the results, not in the returned error.
	Wait() ([]Result, error)

	// GetStats returns current statistics about the pool
	GetStats() Stats

	// Status returns the current status of the pool
	Status() Status

	// Stop shuts down the pool without waiting for queued tasks
	Stop() error
}

// pool implements the Pool interface
type pool struct {
	config  Config
	log     logger.Logger
	tasks   chan taskWithOrder
	results chan Result
	limiter *rate.Limiter

	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.Mutex
	started       atomic.Bool
	stopped       atomic.Bool
	tasksOnce     sync.Once
	resultsOnce   sync.Once
	collectorDone chan struct{}
	collected     []Result

	stats         Stats
	statsMu       sync.RWMutex
	startTime     time.Time
	activeWorkers atomic.Int32
	taskOrder     int
	orderMu       sync.Mutex
}

type taskWithOrder struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &pool{
		config:        config,
		log:           log,
		tasks:         make(chan taskWithOrder, config.Workers*2),
		results:       make(chan Result, config.Workers*2),
		limiter:       limiter,
		collectorDone: make(chan struct{}),
		stats: Stats{
			Status: StatusStopped,
		},
	}, nil
}

// validateConfig checks if the pool configuration is valid
func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

// Start initializes and starts the worker pool
func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.Load() {
		return fmt.Errorf("pool already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started.Store(true)
	p.startTime = time.Now()

	p.statsMu.Lock()
	p.stats = Stats{Status: StatusIdle}
	p.statsMu.Unlock()

	// The collector owns the results slice until the channel closes.
	// Draining continuously keeps workers from blocking on the bounded
	// results channel no matter how many tasks are submitted.
	go p.collect()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.log.WithFields(logger.Fields{
		"workers":    p.config.Workers,
		"rate_limit": p.config.RateLimit,
	}).Debug("Worker pool started")

	return nil
}

// Submit adds a task to the pool for processing
func (p *pool) Submit(task Task) error {
	if !p.started.Load() {
		return fmt.Errorf("pool not started")
	}

	p.orderMu.Lock()
	order := p.taskOrder
	p.taskOrder++
	p.orderMu.Unlock()

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- taskWithOrder{task, order}:
		return nil
	}
}

// Wait blocks until all submitted tasks are processed
func (p *pool) Wait() ([]Result, error) {
	if !p.started.Load() {
		return nil, fmt.Errorf("pool not started")
	}

	p.closeTasks()
	p.stopped.Store(true)

	p.wg.Wait()
	p.closeResults()
	<-p.collectorDone

	results := p.collected

	// Restore submission order
	sort.Slice(results, func(i, j int) bool {
		return results[i].order < results[j].order
	})

	return results, nil
}

// Stop shuts down the pool without waiting for queued tasks
func (p *pool) Stop() error {
	p.mu.Lock()
	if p.stopped.Load() {
		p.mu.Unlock()
		return nil
	}
	if !p.started.Load() {
		p.stopped.Store(true)
		p.mu.Unlock()
		return nil
	}
	p.stopped.Store(true)
	p.started.Store(false)
	p.mu.Unlock()

	p.statsMu.Lock()
	p.stats.Status = StatusStopped
	p.statsMu.Unlock()

	p.cancel()
	p.closeTasks()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.closeResults()
		<-p.collectorDone
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

func (p *pool) closeTasks() {
	p.tasksOnce.Do(func() { close(p.tasks) })
}

func (p *pool) closeResults() {
	p.resultsOnce.Do(func() { close(p.results) })
}

func (p *pool) GetStats() Stats {
	p.statsMu.RLock()
	completed := p.stats.CompletedTasks
	failed := p.stats.FailedTasks
	p.statsMu.RUnlock()

	return Stats{
		ActiveWorkers:  int(p.activeWorkers.Load()),
		QueuedTasks:    len(p.tasks),
		CompletedTasks: completed,
		FailedTasks:    failed,
		Status:         p.getStatus(),
		Uptime:         time.Since(p.startTime),
	}
}

// Status returns the current status of the pool
func (p *pool) Status() Status {
	return p.getStatus()
}

func (p *pool) getStatus() Status {
	if !p.started.Load() {
		return StatusStopped
	}

	active := p.activeWorkers.Load()
	queued := len(p.tasks)

	if active > 0 || queued > 0 {
		return StatusProcessing
	}

	if p.stopped.Load() {
		return StatusStopped
	}

	return StatusIdle
}

// collect drains worker results until the results channel closes.
func (p *pool) collect() {
	defer close(p.collectorDone)

	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

// worker processes tasks from the pool
func (p *pool) worker(id int) {
	defer p.wg.Done()

	log := p.log.WithFields(logger.Fields{"worker": id})

	for two := range p.tasks {
		task := two.Task
		order := two.order

		p.activeWorkers.Add(1)

		// Throttle task starts if configured
		if p.limiter != nil {
			if err := p.limiter.Wait(p.ctx); err != nil {
				p.activeWorkers.Add(-1)
				p.recordFailure()
				p.results <- Result{
					ID:    task.ID,
					Err:   fmt.Errorf("rate limiter wait: %w", err),
					order: order,
				}
				continue
			}
		}

		log.WithFields(logger.Fields{"task": task.ID}).Trace("Task started")

		result, err := task.Execute(p.ctx)
		result.order = order
		if result.ID == 0 {
			result.ID = task.ID
		}

		p.activeWorkers.Add(-1)

		if err != nil {
			result.Err = err
			p.recordFailure()
			log.WithFields(logger.Fields{
				"task":  task.ID,
				"error": err.Error(),
			}).Trace("Task failed")
		} else {
			p.recordCompletion()
			log.WithFields(logger.Fields{"task": task.ID}).Trace("Task completed")
		}

		p.results <- result
	}
}

func (p *pool) recordFailure() {
	p.statsMu.Lock()
	p.stats.FailedTasks++
	p.statsMu.Unlock()
}

func (p *pool) recordCompletion() {
	p.statsMu.Lock()
	p.stats.CompletedTasks++
	p.statsMu.Unlock()
}
