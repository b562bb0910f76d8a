package dispatch

import (
	"github.com/skalidindi/taskmill/pkg/task"
)

// TaskQueue is the queue surface the dispatch components consume. Both
// queue.Blocking and queue.Instrumented satisfy it.
type TaskQueue interface {
	// Put appends a record, transferring ownership to the queue.
	Put(*task.Record) error

	// Get blocks until a record is available and transfers ownership to
	// the caller.
	Get() (*task.Record, error)

	// Len returns the current number of queued records.
	Len() int

	// Close releases the queue. Only the component that owns the queue's
	// lifecycle may call it, after all users have stopped.
	Close() error
}
