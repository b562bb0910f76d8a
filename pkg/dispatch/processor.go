package dispatch

import (
	"strconv"
	"time"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/common/validation"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/task"
)

// ProcessorStats holds a processor's accumulated timings. Lifetime covers
// the whole run loop; WorkTime is the sum of task body durations; IdleTime
// is the time spent blocked on the private queue. Within timing resolution,
// Lifetime ≈ WorkTime + IdleTime.
type ProcessorStats struct {
	Lifetime time.Duration
	WorkTime time.Duration
	IdleTime time.Duration
	TasksRun int
	Skipped  int
}

// ProcessorConfig configures a single processor.
type ProcessorConfig struct {
	// ID is the processor's index, used in reports and metric labels.
	ID int

	// Queue is the processor's private task queue. The scheduler is its
	// only producer.
	Queue TaskQueue

	// Bodies maps schedulable kinds to their work. A record whose kind has
	// no body is counted as skipped, not executed.
	Bodies task.Registry

	// Registry enables Prometheus instrumentation when non-nil.
	Registry *metrics.Registry
}

// Processor is a worker bound to one private queue. It runs a blocking
// get-execute loop on its own goroutine and exits when it receives a
// shutdown sentinel. Its statistics stay private to the run loop; Stats
// blocks until the loop has exited, so reads never race with the loop
// (join-then-read).
type Processor struct {
	id     int
	label  string
	tasks  TaskQueue
	bodies task.Registry
	reg    *metrics.Registry
	stats  ProcessorStats
	done   chan struct{}
}

// NewProcessor creates a processor from cfg. The processor does not start
// until Run is called.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if err := validation.ValidateNonNegative("dispatch", "id", cfg.ID); err != nil {
		return nil, err
	}
	if cfg.Queue == nil {
		return nil, tmerrors.NewValidationError("dispatch", "queue", nil, "cannot be nil")
	}
	if len(cfg.Bodies) == 0 {
		return nil, tmerrors.NewValidationError("dispatch", "bodies", cfg.Bodies, "cannot be empty").
			WithHint("register at least one task body")
	}

	return &Processor{
		id:     cfg.ID,
		label:  strconv.Itoa(cfg.ID),
		tasks:  cfg.Queue,
		bodies: cfg.Bodies,
		reg:    cfg.Registry,
		done:   make(chan struct{}),
	}, nil
}

// ID returns the processor's index.
func (p *Processor) ID() int {
	return p.id
}

// Submit places a record on the processor's private queue.
func (p *Processor) Submit(rec *task.Record) error {
	return p.tasks.Put(rec)
}

// Done is closed when the run loop has exited.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Run executes the processor loop: block for a record, execute its body,
// accumulate timings, repeat until the shutdown sentinel arrives. The
// sentinel is consumed, never forwarded. Run returns nil on a sentinel and
// ErrClosed if the private queue was closed underneath the loop.
func (p *Processor) Run() error {
	start := time.Now()
	lastDone := start

	defer func() {
		p.stats.Lifetime = time.Since(start)
		if p.reg != nil {
			p.reg.ProcessorIdleSeconds.WithLabelValues(p.label).Add(p.stats.IdleTime.Seconds())
			p.reg.ProcessorWorkSeconds.WithLabelValues(p.label).Add(p.stats.WorkTime.Seconds())
		}
		close(p.done)
	}()

	for {
		rec, err := p.tasks.Get()
		if err != nil {
			// The private queue is only closed by the engine after this
			// loop exits; a closed queue here means the sentinel protocol
			// was bypassed.
			return err
		}

		p.stats.IdleTime += time.Since(lastDone)

		if !rec.Kind.Schedulable() {
			return nil
		}

		p.execute(rec)
		lastDone = time.Now()
	}
}

func (p *Processor) execute(rec *task.Record) {
	body, ok := p.bodies.Lookup(rec.Kind)
	if !ok {
		p.stats.Skipped++
		rec.MarkCompleted(time.Now())
		return
	}

	elapsed := body()
	rec.MarkCompleted(time.Now())

	p.stats.WorkTime += elapsed
	p.stats.TasksRun++

	if p.reg != nil {
		p.reg.TasksExecuted.WithLabelValues(p.label, rec.Kind.String()).Inc()
		p.reg.TaskExecutionDuration.WithLabelValues(rec.Kind.String()).Observe(elapsed.Seconds())
	}
}

// Stats returns the processor's accumulated timings. It blocks until the
// run loop has exited, so the returned snapshot never races with the loop.
func (p *Processor) Stats() ProcessorStats {
	<-p.done
	return p.stats
}
