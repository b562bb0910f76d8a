package feed

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/dispatch"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/task"
)

// Config configures a Feeder.
type Config struct {
	// Queue is the scheduler's inbound queue.
	Queue dispatch.TaskQueue

	// UnitDelay is the real duration of one pause unit. Defaults to one
	// second, matching one unit per second of simulated time.
	UnitDelay time.Duration

	// Limiter optionally paces task submission. Pause events are honored
	// on top of any limiter wait.
	Limiter *rate.Limiter

	// Registry enables Prometheus instrumentation when non-nil.
	Registry *metrics.Registry
}

// DefaultConfig returns the default feeder configuration for the given
// inbound queue.
func DefaultConfig(q dispatch.TaskQueue) Config {
	return Config{
		Queue:     q,
		UnitDelay: time.Second,
	}
}

// Feeder replays a producer event sequence into the inbound queue: submit
// events become task records, pause events delay the feeder itself. After
// the last event it appends exactly one shutdown sentinel, which is the
// only way the dispatch system terminates.
type Feeder struct {
	queue     dispatch.TaskQueue
	unitDelay time.Duration
	limiter   *rate.Limiter
	reg       *metrics.Registry
}

// New creates a feeder from cfg.
func New(cfg Config) (*Feeder, error) {
	if cfg.Queue == nil {
		return nil, tmerrors.NewValidationError("feed", "queue", nil, "cannot be nil")
	}
	unitDelay := cfg.UnitDelay
	if unitDelay <= 0 {
		unitDelay = time.Second
	}

	return &Feeder{
		queue:     cfg.Queue,
		unitDelay: unitDelay,
		limiter:   cfg.Limiter,
		reg:       cfg.Registry,
	}, nil
}

// Run consumes events strictly in order, then appends the sentinel. If ctx
// is canceled mid-sequence the remaining events are abandoned but the
// sentinel is still appended, so the dispatch system always shuts down
// cleanly; the context error is returned.
func (f *Feeder) Run(ctx context.Context, events []Event) error {
	err := f.Replay(ctx, events)

	if finErr := f.Finish(); finErr != nil && err == nil {
		err = finErr
	}
	return err
}

// Finish appends the shutdown sentinel. Callers that interleave other
// sources with the event replay (e.g. cron injection) use Replay and
// Finish separately so every source can stop before the sentinel lands.
func (f *Feeder) Finish() error {
	if err := f.queue.Put(task.NewShutdownRecord()); err != nil {
		return tmerrors.NewOperationError("feed", "Finish", err).
			WithContext("appending shutdown sentinel")
	}
	return nil
}

// Replay consumes events strictly in order without appending the sentinel.
func (f *Feeder) Replay(ctx context.Context, events []Event) error {
	for _, ev := range events {
		switch ev.Type {
		case EventPause:
			d := time.Duration(ev.Units) * f.unitDelay
			if err := f.pause(ctx, d); err != nil {
				return err
			}
			if f.reg != nil {
				f.reg.FeedDelays.WithLabelValues("input").Inc()
				f.reg.FeedDelaySeconds.WithLabelValues("input").Observe(d.Seconds())
			}

		case EventSubmit:
			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			rec := task.NewRecord(ev.Kind)
			rec.MarkEnqueued(time.Now())
			if err := f.queue.Put(rec); err != nil {
				return tmerrors.NewOperationError("feed", "Replay", err).
					WithContext("submitting task " + ev.Kind.String())
			}
			if f.reg != nil {
				f.reg.FeedTasksSubmitted.WithLabelValues(ev.Kind.String()).Inc()
			}
		}
	}
	return nil
}

func (f *Feeder) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
