// Package dispatch implements taskmill's scheduler/processor protocol: a
// single scheduler goroutine pulls task records from one inbound blocking
// queue and fans them out to a fixed pool of processors, each of which
// consumes a private queue on its own goroutine.
//
// # Protocol
//
// The scheduler never executes task bodies; processors never route. The
// only shared structures are the blocking queues, each with its own lock,
// so there is no cross-queue ordering and no cross-queue deadlock.
//
// Shutdown uses a reserved sentinel record: the producer appends exactly
// one sentinel to the inbound queue after its last task; the scheduler
// consumes it, stops routing, and delivers a fresh sentinel to every
// processor's queue. Because each private queue is FIFO, a processor
// finishes all work routed to it before observing its sentinel and
// exiting. Callers join the scheduler first, then each processor.
//
// # Statistics
//
// Each processor accumulates lifetime, work and idle durations privately.
// Processor.Stats blocks until the run loop has exited, enforcing the
// join-then-read discipline that keeps the counters race-free.
package dispatch
