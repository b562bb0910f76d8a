package queue

import (
	"sync"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/common/validation"
)

// node is a single owned link in the FIFO chain. A node is reachable from
// exactly one place at any instant: the queue, or the goroutine that just
// removed it.
type node[T any] struct {
	data T
	next *node[T]
}

// Blocking is a FIFO queue safe for concurrent use by any number of
// producers and consumers. Removal blocks until an element is available;
// insertion never blocks. All structural mutation happens under one mutex,
// and consumers wait on a condition variable signaled when the queue
// becomes non-empty.
type Blocking[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	head   *node[T]
	tail   *node[T]
	count  int
	closed bool
}

// New creates an empty blocking queue.
func New[T any]() *Blocking[T] {
	q := &Blocking[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// take removes the head element. Callers must hold q.mu and guarantee the
// queue is non-empty.
func (q *Blocking[T]) take() T {
	first := q.head
	q.head = first.next
	if q.head == nil {
		q.tail = nil
	}
	first.next = nil
	q.count--
	return first.data
}

// Put appends item at the tail. It never blocks. Returns ErrClosed after
// Close, in which case the queue is unchanged and the caller keeps
// ownership of item.
func (q *Blocking[T]) Put(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return tmerrors.ErrClosed
	}

	n := &node[T]{data: item}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.count++

	// One signal per element: with multiple consumers blocked, signaling
	// only on the empty transition strands all but the first waiter.
	q.cond.Signal()
	return nil
}

// Get removes and returns the head element, blocking while the queue is
// empty. The wait loop re-checks the count after every wakeup, so spurious
// wakeups and competing consumers are tolerated. Returns ErrClosed if the
// queue is closed before an element becomes available.
func (q *Blocking[T]) Get() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 {
		if q.closed {
			var zero T
			return zero, tmerrors.ErrClosed
		}
		q.cond.Wait()
	}
	return q.take(), nil
}

// Drain removes up to len(buf) elements in FIFO order without blocking and
// returns how many were written into buf. Returns 0 when the queue is empty
// at the instant of the call.
func (q *Blocking[T]) Drain(buf []T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drainLocked(buf)
}

func (q *Blocking[T]) drainLocked(buf []T) int {
	n := 0
	for n < len(buf) && q.count > 0 {
		buf[n] = q.take()
		n++
	}
	return n
}

// DrainAtLeast removes up to len(buf) elements, blocking until at least min
// have been removed in total. Elements are drained in FIFO order whenever
// any are available; the wait only happens on an empty queue, so no element
// sits unclaimed while a consumer sleeps. min greater than len(buf) is a
// caller contract error reported as a ValidationError. Returns the number
// of elements written, with ErrClosed if the queue closes before min is met.
func (q *Blocking[T]) DrainAtLeast(buf []T, min int) (int, error) {
	if err := validation.ValidateNonNegative("queue", "min", min); err != nil {
		return 0, err
	}
	if err := validation.ValidateAtMost("queue", "min", min, len(buf)); err != nil {
		return 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	total := 0
	for {
		total += q.drainLocked(buf[total:])
		if total >= min {
			return total, nil
		}
		for q.count == 0 {
			if q.closed {
				return total, tmerrors.ErrClosed
			}
			q.cond.Wait()
		}
	}
}

// Len returns the number of queued elements.
func (q *Blocking[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Close marks the queue closed, releases every still-queued element, and
// wakes all blocked consumers, which return ErrClosed. Subsequent Put and
// Get calls fail with ErrClosed. Closing an already-closed queue returns
// ErrClosed.
func (q *Blocking[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return tmerrors.ErrClosed
	}
	q.closed = true
	q.head = nil
	q.tail = nil
	q.count = 0
	q.cond.Broadcast()
	return nil
}
