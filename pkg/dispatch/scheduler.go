package dispatch

import (
	"errors"
	"strconv"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/common/validation"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/task"
)

// SchedulerConfig configures the scheduler.
type SchedulerConfig struct {
	// Inbound is the single queue the producer feeds. The scheduler is its
	// only consumer.
	Inbound TaskQueue

	// Processors is the fixed set of workers to route to. The set never
	// changes after construction.
	Processors []*Processor

	// Router selects the destination processor. Defaults to round-robin.
	Router Router

	// Registry enables Prometheus instrumentation when non-nil.
	Registry *metrics.Registry
}

// Scheduler routes records from the inbound queue to the processors'
// private queues. It executes no task bodies itself. On receiving the
// shutdown sentinel it stops routing and delivers one fresh sentinel to
// every processor, which guarantees each processor's queue eventually
// yields a sentinel and no processor blocks forever.
type Scheduler struct {
	inbound TaskQueue
	procs   []*Processor
	router  Router
	reg     *metrics.Registry
	done    chan struct{}
}

// NewScheduler creates a scheduler from cfg. The scheduler does not start
// until Run is called.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Inbound == nil {
		return nil, tmerrors.NewValidationError("dispatch", "inbound", nil, "cannot be nil")
	}
	if err := validation.ValidatePositive("dispatch", "processors", len(cfg.Processors)); err != nil {
		return nil, err
	}

	router := cfg.Router
	if router == nil {
		router = NewRoundRobin()
	}

	return &Scheduler{
		inbound: cfg.Inbound,
		procs:   cfg.Processors,
		router:  router,
		reg:     cfg.Registry,
		done:    make(chan struct{}),
	}, nil
}

// Done is closed when the run loop has exited and all sentinels have been
// delivered.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Run executes the scheduler loop: block on the inbound queue, route each
// schedulable record to one processor, and on the sentinel broadcast
// shutdown to every processor before returning. A closed inbound queue is
// treated like a sentinel so shutdown still completes.
func (s *Scheduler) Run() error {
	defer close(s.done)

	for {
		rec, err := s.inbound.Get()
		if err != nil {
			if errors.Is(err, tmerrors.ErrClosed) {
				break
			}
			return err
		}

		if !rec.Kind.Schedulable() {
			break
		}

		idx := s.router.Route(rec, len(s.procs))
		if idx < 0 || idx >= len(s.procs) {
			// A misbehaving router must not lose the task.
			idx = 0
		}
		if err := s.procs[idx].Submit(rec); err != nil {
			// Processors that already started must still receive their
			// sentinel or they block forever on their private queues.
			_ = s.broadcastShutdown()
			return tmerrors.NewOperationError("dispatch", "Route", err).
				WithContext("processor " + strconv.Itoa(s.procs[idx].ID()))
		}
		if s.reg != nil {
			s.reg.TasksRouted.WithLabelValues(strconv.Itoa(s.procs[idx].ID())).Inc()
		}
	}

	return s.broadcastShutdown()
}

// broadcastShutdown delivers one freshly allocated sentinel per processor.
// Sharing a single record across queues would leave several consumers
// holding the same handle, so each gets its own. Delivery continues past
// individual failures so one broken queue cannot strand the remaining
// processors; the first failure is returned.
func (s *Scheduler) broadcastShutdown() error {
	var firstErr error
	for _, p := range s.procs {
		if err := p.Submit(task.NewShutdownRecord()); err != nil {
			if firstErr == nil {
				firstErr = tmerrors.NewOperationError("dispatch", "Shutdown", err).
					WithContext("processor " + strconv.Itoa(p.ID()))
			}
			continue
		}
		if s.reg != nil {
			s.reg.SentinelsDelivered.WithLabelValues(strconv.Itoa(p.ID())).Inc()
		}
	}
	return firstErr
}
