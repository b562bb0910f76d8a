// Package queue provides a mutex/condition-variable blocking FIFO queue,
// the only shared mutable structure between taskmill's feeder, scheduler
// and processors.
//
// Each queue instance carries its own lock and condition variable, so two
// queues never contend and no cross-queue lock ordering exists. Consumers
// suspend only inside Get and DrainAtLeast; every other operation holds the
// lock for a bounded critical section.
//
// # Ordering
//
// Elements leave a queue in the order their Put critical sections acquired
// the lock. There is no ordering relationship across distinct queue
// instances.
//
// # Ownership
//
// Put transfers ownership of the element from the caller to the queue;
// Get, Drain and DrainAtLeast transfer it from the queue to the caller.
// The queue retains no reference to removed elements.
//
// # Example
//
//	q := queue.New[int]()
//	go func() {
//		_ = q.Put(42)
//	}()
//	v, err := q.Get() // blocks until the Put lands
//
// Close wakes every blocked consumer with ErrClosed and drops any elements
// still queued; it is the owner's responsibility to call it only once all
// producers are done.
package queue
