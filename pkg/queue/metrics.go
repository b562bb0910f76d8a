package queue

import (
	"github.com/skalidindi/taskmill/pkg/metrics"
)

// Instrumented wraps a Blocking queue with Prometheus metrics collection.
// It mirrors the queue API so callers can swap it in wherever a plain
// queue is used.
type Instrumented[T any] struct {
	q        *Blocking[T]
	name     string
	registry *metrics.Registry
}

// NewInstrumented wraps q with metrics recorded under the given queue name.
// A nil registry disables collection and the wrapper becomes a plain
// pass-through.
func NewInstrumented[T any](q *Blocking[T], name string, registry *metrics.Registry) *Instrumented[T] {
	return &Instrumented[T]{
		q:        q,
		name:     name,
		registry: registry,
	}
}

func (i *Instrumented[T]) updateDepth() {
	if i.registry == nil {
		return
	}
	i.registry.QueueDepth.WithLabelValues(i.name).Set(float64(i.q.Len()))
}

// Put appends item at the tail and records the enqueue.
func (i *Instrumented[T]) Put(item T) error {
	err := i.q.Put(item)
	if err == nil && i.registry != nil {
		i.registry.QueuePuts.WithLabelValues(i.name).Inc()
	}
	i.updateDepth()
	return err
}

// Get removes and returns the head element, blocking while empty.
func (i *Instrumented[T]) Get() (T, error) {
	item, err := i.q.Get()
	if err == nil && i.registry != nil {
		i.registry.QueueGets.WithLabelValues(i.name).Inc()
	}
	i.updateDepth()
	return item, err
}

// Drain removes up to len(buf) elements without blocking.
func (i *Instrumented[T]) Drain(buf []T) int {
	n := i.q.Drain(buf)
	if n > 0 && i.registry != nil {
		i.registry.QueueDrained.WithLabelValues(i.name).Add(float64(n))
	}
	i.updateDepth()
	return n
}

// DrainAtLeast removes up to len(buf) elements, blocking until at least min
// have been removed.
func (i *Instrumented[T]) DrainAtLeast(buf []T, min int) (int, error) {
	n, err := i.q.DrainAtLeast(buf, min)
	if n > 0 && i.registry != nil {
		i.registry.QueueDrained.WithLabelValues(i.name).Add(float64(n))
	}
	i.updateDepth()
	return n, err
}

// Len returns the number of queued elements.
func (i *Instrumented[T]) Len() int {
	return i.q.Len()
}

// Close closes the underlying queue.
func (i *Instrumented[T]) Close() error {
	err := i.q.Close()
	i.updateDepth()
	return err
}
