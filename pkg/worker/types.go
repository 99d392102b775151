package worker

import "time"

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not processing
	StatusIdle Status = "idle"

	// StatusProcessing indicates the pool is actively processing tasks
	StatusProcessing Status = "processing"

	// StatusStopped indicates the pool has been stopped or never started
	StatusStopped Status = "stopped"
)

// Stats provides runtime statistics about the worker pool
type Stats struct {
	// ActiveWorkers is the number of workers currently executing a task
	ActiveWorkers int

	// QueuedTasks is the number of tasks waiting for a worker
	QueuedTasks int

	// CompletedTasks is the number of tasks that finished without error
	CompletedTasks int

	// FailedTasks is the number of tasks whose Execute returned an error
	FailedTasks int

	// Status is the current state of the pool
	Status Status

	// Uptime is how long the pool has been running
	Uptime time.Duration
}
