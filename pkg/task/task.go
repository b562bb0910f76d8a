package task

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates units of work. One reserved value, KindShutdown,
// instructs a consumer to terminate its run loop instead of executing work;
// it is never schedulable and routing code must check Schedulable before
// treating a record as work.
type Kind byte

const (
	KindA Kind = 'A'
	KindB Kind = 'B'
	KindC Kind = 'C'
	KindD Kind = 'D'

	// KindShutdown is the reserved sentinel kind.
	KindShutdown Kind = 'K'
)

// Kinds lists every schedulable kind.
var Kinds = []Kind{KindA, KindB, KindC, KindD}

// Schedulable reports whether the kind identifies executable work.
func (k Kind) Schedulable() bool {
	switch k {
	case KindA, KindB, KindC, KindD:
		return true
	}
	return false
}

func (k Kind) String() string {
	if k == KindShutdown {
		return "shutdown"
	}
	return string(rune(k))
}

// ParseKind maps an input byte to a schedulable kind. The sentinel kind is
// internal and never parses from input.
func ParseKind(b byte) (Kind, bool) {
	k := Kind(b)
	return k, k.Schedulable()
}

// Record is the unit of work handed between queues. It is owned by exactly
// one queue or one goroutine at any instant; both timestamps are written
// once.
type Record struct {
	ID          uuid.UUID
	Kind        Kind
	EnqueuedAt  time.Time
	CompletedAt time.Time
}

// NewRecord creates a record of the given kind with a fresh identity and
// unset timestamps.
func NewRecord(kind Kind) *Record {
	return &Record{
		ID:   uuid.New(),
		Kind: kind,
	}
}

// NewShutdownRecord creates a sentinel record. Each consumer needs its own
// copy, so broadcast code allocates one per recipient rather than sharing.
func NewShutdownRecord() *Record {
	return NewRecord(KindShutdown)
}

// MarkEnqueued stamps the scheduling timestamp. Only the first call writes.
func (r *Record) MarkEnqueued(now time.Time) {
	if r.EnqueuedAt.IsZero() {
		r.EnqueuedAt = now
	}
}

// MarkCompleted stamps the completion timestamp. Only the first call writes.
func (r *Record) MarkCompleted(now time.Time) {
	if r.CompletedAt.IsZero() {
		r.CompletedAt = now
	}
}
