package engine

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/skalidindi/taskmill/pkg/common/validation"
	"github.com/skalidindi/taskmill/pkg/dispatch"
	"github.com/skalidindi/taskmill/pkg/feed"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/queue"
	"github.com/skalidindi/taskmill/pkg/task"
)

// CronEntry describes one recurring task source active for the duration of
// a run.
type CronEntry struct {
	// Expr is a six-field cron expression with a leading seconds field.
	Expr string

	// Kind is the task kind injected on each tick.
	Kind task.Kind
}

// Config configures an Engine.
type Config struct {
	// Processors is the fixed number of workers. The pool never resizes.
	Processors int

	// UnitDelay is the real duration of one producer pause unit.
	// Defaults to one second.
	UnitDelay time.Duration

	// BodyUnit scales the simulated task bodies (A=5, B=10, C=15, D=20
	// units). Ignored when Bodies is set. Defaults to one second.
	BodyUnit time.Duration

	// Bodies overrides the simulated task bodies.
	Bodies task.Registry

	// Router selects the destination processor per task. Defaults to
	// round-robin.
	Router dispatch.Router

	// Limiter optionally paces the feeder's task submission.
	Limiter *rate.Limiter

	// Cron lists recurring task sources started for the run.
	Cron []CronEntry

	// Logger receives runtime events. Defaults to a nop logger.
	Logger *zap.Logger

	// Metrics configures Prometheus instrumentation. Disabled by default.
	Metrics metrics.Config
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Processors: 4,
		UnitDelay:  time.Second,
		BodyUnit:   time.Second,
	}
}

// Report is the outcome of one run, assembled only after every goroutine
// has terminated.
type Report struct {
	// Processors holds each processor's timings, indexed by processor ID.
	Processors []dispatch.ProcessorStats

	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration
}

// TotalTasks returns the number of task bodies executed across processors.
func (r *Report) TotalTasks() int {
	total := 0
	for _, p := range r.Processors {
		total += p.TasksRun
	}
	return total
}

// Engine wires the feeder, the scheduler and the processor pool around
// their blocking queues and runs one complete dispatch cycle.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	reg    *metrics.Registry
}

// New creates an engine from cfg. Configuration errors are fatal to the
// run: no component starts and callers should abort rather than run in a
// partially initialized state.
func New(cfg Config) (*Engine, error) {
	if err := validation.ValidatePositive("engine", "processors", cfg.Processors); err != nil {
		return nil, err
	}
	if cfg.UnitDelay <= 0 {
		cfg.UnitDelay = time.Second
	}
	if cfg.BodyUnit <= 0 {
		cfg.BodyUnit = time.Second
	}
	if cfg.Bodies == nil {
		cfg.Bodies = task.SimulatedBodies(cfg.BodyUnit)
	}
	if cfg.Router == nil {
		cfg.Router = dispatch.NewRoundRobin()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:    cfg,
		logger: logger,
		reg:    cfg.Metrics.Resolve(),
	}, nil
}

// Run executes one dispatch cycle: start the processors and the scheduler,
// replay the producer events (plus any cron sources), append the sentinel,
// then join the scheduler and every processor in order and assemble the
// report. A canceled context abandons the remaining producer events but
// still shuts the system down cleanly; the report reflects everything that
// ran, and the context error is returned alongside it.
func (e *Engine) Run(ctx context.Context, events []feed.Event) (*Report, error) {
	start := time.Now()

	inbound := queue.NewInstrumented(queue.New[*task.Record](), "inbound", e.reg)

	procs := make([]*dispatch.Processor, e.cfg.Processors)
	queues := make([]*queue.Instrumented[*task.Record], e.cfg.Processors)
	for i := range procs {
		queues[i] = queue.NewInstrumented(queue.New[*task.Record](), "processor-"+strconv.Itoa(i), e.reg)
		p, err := dispatch.NewProcessor(dispatch.ProcessorConfig{
			ID:       i,
			Queue:    queues[i],
			Bodies:   e.cfg.Bodies,
			Registry: e.reg,
		})
		if err != nil {
			return nil, err
		}
		procs[i] = p
	}

	sched, err := dispatch.NewScheduler(dispatch.SchedulerConfig{
		Inbound:    inbound,
		Processors: procs,
		Router:     e.cfg.Router,
		Registry:   e.reg,
	})
	if err != nil {
		return nil, err
	}

	feeder, err := feed.New(feed.Config{
		Queue:     inbound,
		UnitDelay: e.cfg.UnitDelay,
		Limiter:   e.cfg.Limiter,
		Registry:  e.reg,
	})
	if err != nil {
		return nil, err
	}

	sources := make([]*feed.CronSource, 0, len(e.cfg.Cron))
	for _, entry := range e.cfg.Cron {
		src, err := feed.NewCronSource(inbound, e.reg)
		if err != nil {
			return nil, err
		}
		if _, err := src.Add(entry.Expr, entry.Kind); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	e.logger.Info("starting run",
		zap.Int("processors", e.cfg.Processors),
		zap.Int("events", len(events)),
		zap.Int("cron_sources", len(sources)),
	)

	// All workers and the scheduler start before the first event is fed,
	// so no task can arrive at a queue nobody consumes.
	for _, p := range procs {
		go func(p *dispatch.Processor) { _ = p.Run() }(p)
	}

	for _, src := range sources {
		src.Start()
	}

	// The scheduler and the producer lifecycle share one group: a scheduler
	// failure cancels the replay through gctx, and the group's wait is the
	// scheduler join, after which every processor has a sentinel queued.
	// Replay errors (cancellation included) are not fatal to the run; they
	// are recorded and returned alongside the report.
	var replayErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(sched.Run)
	g.Go(func() error {
		replayErr = feeder.Replay(gctx, events)
		// Recurring sources stop before the sentinel so nothing is
		// enqueued after shutdown begins.
		for _, src := range sources {
			src.Stop()
		}
		return feeder.Finish()
	})

	if err := g.Wait(); err != nil {
		releaseAll(inbound, queues, procs)
		return nil, err
	}
	e.logger.Debug("producer finished", zap.Error(replayErr))

	report := &Report{
		Processors: make([]dispatch.ProcessorStats, len(procs)),
	}
	for i, p := range procs {
		report.Processors[i] = p.Stats() // blocks until the processor exits
		e.logger.Debug("processor terminated",
			zap.Int("processor", p.ID()),
			zap.Duration("lifetime", report.Processors[i].Lifetime),
			zap.Duration("work", report.Processors[i].WorkTime),
			zap.Duration("idle", report.Processors[i].IdleTime),
		)
	}

	// Every goroutine with a queue reference has terminated; releasing the
	// queues is now safe.
	_ = inbound.Close()
	for _, q := range queues {
		_ = q.Close()
	}

	report.Elapsed = time.Since(start)
	e.logger.Info("run complete",
		zap.Duration("elapsed", report.Elapsed),
		zap.Int("tasks", report.TotalTasks()),
	)
	return report, replayErr
}

// releaseAll is the fatal-path teardown: closing the queues wakes every
// processor still blocked on Get, and the waits ensure no goroutine holds a
// queue reference when Run returns. Processors woken this way exit with
// ErrClosed instead of a sentinel.
func releaseAll(inbound *queue.Instrumented[*task.Record], queues []*queue.Instrumented[*task.Record], procs []*dispatch.Processor) {
	_ = inbound.Close()
	for _, q := range queues {
		_ = q.Close()
	}
	for _, p := range procs {
		<-p.Done()
	}
}
