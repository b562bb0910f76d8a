/*
Package taskmill provides a single-producer, multi-consumer task dispatch
engine built on blocking FIFO queues.

Queues (pkg/queue):
  - Blocking: unbounded FIFO with blocking Get and bulk draining
  - Instrumented: Prometheus-instrumented queue wrapper

Tasks (pkg/task):
  - Kind: the task alphabet (A-D) plus the shutdown sentinel
  - Record: one dispatched task with enqueue and completion timestamps
  - Registry: task bodies keyed by kind

Dispatch (pkg/dispatch):
  - Scheduler: routes inbound tasks to per-processor private queues
  - Processor: executes tasks from its queue until the sentinel arrives
  - Router: round-robin and kind-affinity routing policies

Feeding (pkg/feed):
  - Parse: producer scripts of task letters and pause digits
  - Feeder: replays events and appends the shutdown sentinel
  - CronSource: recurring task injection on cron schedules

Example usage:

	import (
		"github.com/skalidindi/taskmill/pkg/engine"
		"github.com/skalidindi/taskmill/pkg/feed"
	)

	events, _ := feed.Parse("ABCD5AB5CD5A9B9CDABCD")
	eng, _ := engine.New(engine.Config{Processors: 4})
	report, _ := eng.Run(context.Background(), events)

	for i, p := range report.Processors {
		fmt.Printf("processor %d: %d tasks, work %v, idle %v\n",
			i, p.TasksRun, p.WorkTime, p.IdleTime)
	}

Shutdown is ordered: the producer appends exactly one sentinel, the
scheduler broadcasts a fresh sentinel to every processor, and statistics
are read only after the owning processor has terminated.
*/
package taskmill
