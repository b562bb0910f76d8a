package feed

import (
	"time"

	"github.com/robfig/cron/v3"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/dispatch"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/task"
)

// CronSource injects recurring tasks into the inbound queue on cron
// schedules, alongside the one-shot event feed. It must be stopped before
// the feeder appends its sentinel so no task arrives after shutdown began.
type CronSource struct {
	cron  *cron.Cron
	queue dispatch.TaskQueue
	reg   *metrics.Registry
}

// NewCronSource creates a recurring task source feeding q. registry may be
// nil to disable instrumentation.
func NewCronSource(q dispatch.TaskQueue, registry *metrics.Registry) (*CronSource, error) {
	if q == nil {
		return nil, tmerrors.NewValidationError("feed", "queue", nil, "cannot be nil")
	}
	return &CronSource{
		cron:  cron.New(cron.WithSeconds()),
		queue: q,
		reg:   registry,
	}, nil
}

// Add schedules a recurring submission of the given kind. The expression
// uses the six-field cron format with a leading seconds field, e.g.
// "*/5 * * * * *" for every five seconds.
func (c *CronSource) Add(cronExpr string, kind task.Kind) (cron.EntryID, error) {
	if !kind.Schedulable() {
		return 0, tmerrors.NewValidationError("feed", "kind", kind.String(), "not schedulable").
			WithHint("recurring entries must use task kinds A-D")
	}

	id, err := c.cron.AddFunc(cronExpr, func() {
		c.emit(kind)
	})
	if err != nil {
		return 0, tmerrors.NewValidationError("feed", "cronExpr", cronExpr, err.Error())
	}
	return id, nil
}

// emit submits one record of the given kind. A queue closed by shutdown is
// not an error: ticks racing the end of a run are simply discarded.
func (c *CronSource) emit(kind task.Kind) {
	rec := task.NewRecord(kind)
	rec.MarkEnqueued(time.Now())
	if err := c.queue.Put(rec); err != nil {
		return
	}
	if c.reg != nil {
		c.reg.FeedTasksSubmitted.WithLabelValues(kind.String()).Inc()
		c.reg.FeedDelays.WithLabelValues("cron").Inc()
	}
}

// Start begins dispatching ticks on the source's own goroutine.
func (c *CronSource) Start() {
	c.cron.Start()
}

// Stop cancels future ticks and waits for in-flight submissions to finish.
func (c *CronSource) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}
