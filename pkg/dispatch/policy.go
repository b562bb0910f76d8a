package dispatch

import (
	"github.com/skalidindi/taskmill/pkg/task"
)

// Router selects the processor a schedulable record is sent to. A router
// must always return an index in [0, processors) and never drop a task;
// it is called only from the scheduler goroutine, so implementations need
// no internal locking.
type Router interface {
	Route(rec *task.Record, processors int) int
}

// RoundRobin routes tasks to processors in rotation, independent of kind.
type RoundRobin struct {
	next int
}

// NewRoundRobin creates a round-robin router starting at processor 0.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (r *RoundRobin) Route(_ *task.Record, processors int) int {
	i := r.next % processors
	r.next++
	return i
}

// KindAffinity pins each task kind to one processor, so tasks of the same
// kind always execute in submission order on the same goroutine.
type KindAffinity struct{}

func (KindAffinity) Route(rec *task.Record, processors int) int {
	for i, k := range task.Kinds {
		if rec.Kind == k {
			return i % processors
		}
	}
	return 0
}
