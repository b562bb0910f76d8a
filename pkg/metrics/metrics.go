// Package metrics provides Prometheus instrumentation for taskmill components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for taskmill components.
type Registry struct {
	// Queue metrics
	QueueDepth   *prometheus.GaugeVec
	QueuePuts    *prometheus.CounterVec
	QueueGets    *prometheus.CounterVec
	QueueDrained *prometheus.CounterVec

	// Dispatch metrics
	TasksRouted           *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	ProcessorWorkSeconds  *prometheus.CounterVec
	ProcessorIdleSeconds  *prometheus.CounterVec
	SentinelsDelivered    *prometheus.CounterVec

	// Feed metrics
	FeedTasksSubmitted *prometheus.CounterVec
	FeedDelays         *prometheus.CounterVec
	FeedDelaySeconds   *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by taskmill components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Queue metrics
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "taskmill",
				Subsystem: "queue",
				Name:      "depth",
				Help:      "Current number of queued tasks",
			},
			[]string{"queue_name"},
		),

		QueuePuts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "queue",
				Name:      "puts_total",
				Help:      "Total number of tasks enqueued",
			},
			[]string{"queue_name"},
		),

		QueueGets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "queue",
				Name:      "gets_total",
				Help:      "Total number of tasks dequeued one at a time",
			},
			[]string{"queue_name"},
		),

		QueueDrained: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "queue",
				Name:      "drained_total",
				Help:      "Total number of tasks removed by bulk drains",
			},
			[]string{"queue_name"},
		),

		// Dispatch metrics
		TasksRouted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "tasks_routed_total",
				Help:      "Total number of tasks routed to a processor",
			},
			[]string{"processor"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "tasks_executed_total",
				Help:      "Total number of task bodies executed",
			},
			[]string{"processor", "kind"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing task bodies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		ProcessorWorkSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "processor_work_seconds_total",
				Help:      "Cumulative time processors spent executing tasks",
			},
			[]string{"processor"},
		),

		ProcessorIdleSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "processor_idle_seconds_total",
				Help:      "Cumulative time processors spent waiting for tasks",
			},
			[]string{"processor"},
		),

		SentinelsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "dispatch",
				Name:      "sentinels_delivered_total",
				Help:      "Total number of shutdown sentinels delivered to processors",
			},
			[]string{"processor"},
		),

		// Feed metrics
		FeedTasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "feed",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks submitted by the feeder",
			},
			[]string{"kind"},
		),

		FeedDelays: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmill",
				Subsystem: "feed",
				Name:      "delays_total",
				Help:      "Total number of producer delay events honored",
			},
			[]string{"source"},
		),

		FeedDelaySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskmill",
				Subsystem: "feed",
				Name:      "delay_seconds",
				Help:      "Duration of producer delay events",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}
