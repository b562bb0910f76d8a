// Package metrics provides Prometheus instrumentation for taskmill components.
//
// The metrics package provides automatic instrumentation for:
//   - Blocking queues (depth, puts, gets, bulk drains)
//   - Dispatch (routed tasks, execution durations, processor work/idle time)
//   - The producer feed (submitted tasks, honored delays)
//
// # Quick Start
//
// Enable metrics through the engine configuration:
//
//	eng, err := engine.New(engine.Config{
//		Processors: 4,
//		Metrics:    metrics.DefaultConfig(),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: registry}
//
// # Available Metrics
//
//   - taskmill_queue_depth: Current number of queued tasks per queue
//   - taskmill_queue_puts_total: Total tasks enqueued
//   - taskmill_queue_gets_total: Total tasks dequeued one at a time
//   - taskmill_queue_drained_total: Total tasks removed by bulk drains
//   - taskmill_dispatch_tasks_routed_total: Tasks routed per processor
//   - taskmill_dispatch_tasks_executed_total: Task bodies executed
//   - taskmill_dispatch_task_duration_seconds: Task body execution time
//   - taskmill_dispatch_processor_work_seconds_total: Cumulative work time
//   - taskmill_dispatch_processor_idle_seconds_total: Cumulative idle time
//   - taskmill_dispatch_sentinels_delivered_total: Shutdown sentinels delivered
//   - taskmill_feed_tasks_submitted_total: Tasks submitted by the feeder
//   - taskmill_feed_delays_total: Producer delay events honored
//   - taskmill_feed_delay_seconds: Producer delay durations
package metrics
