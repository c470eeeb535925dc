// Package prom exports scope and task lifecycle metrics to Prometheus. It
// implements the abortx.Observer interface.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deeplay-io/abortx-go/abortx"
)

// Observer records scope and task lifecycle events as Prometheus metrics.
type Observer struct {
	scopesCreated   prometheus.Counter
	scopesCancelled prometheus.Counter
	joinWait        prometheus.Histogram

	tasksActive   prometheus.Gauge
	tasksStarted  prometheus.Counter
	tasksFailed   prometheus.Counter
	tasksAborted  prometheus.Counter
	tasksPanicked prometheus.Counter
	taskDuration  prometheus.Histogram
}

// New creates an Observer and registers its collectors on reg. Passing a nil
// reg leaves the metrics unregistered, which is useful in tests.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		scopesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_scopes_created_total",
			Help: "Scopes created by Spawn.",
		}),
		scopesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_scopes_cancelled_total",
			Help: "Scopes whose local signal was cancelled.",
		}),
		joinWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "abortx_scope_join_wait_seconds",
			Help:    "Time Spawn spent waiting for the live task set to empty.",
			Buckets: prometheus.DefBuckets,
		}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "abortx_tasks_active",
			Help: "Forked tasks currently running.",
		}),
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_tasks_started_total",
			Help: "Forked tasks started.",
		}),
		tasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_tasks_failed_total",
			Help: "Tasks settled with a genuine failure.",
		}),
		tasksAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_tasks_aborted_total",
			Help: "Tasks settled with a cancellation error.",
		}),
		tasksPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abortx_tasks_panicked_total",
			Help: "Tasks that panicked.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "abortx_task_duration_seconds",
			Help:    "Task run time from start to settlement.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			o.scopesCreated, o.scopesCancelled, o.joinWait,
			o.tasksActive, o.tasksStarted,
			o.tasksFailed, o.tasksAborted, o.tasksPanicked,
			o.taskDuration,
		)
	}
	return o
}

// ScopeCreated implements abortx.Observer.
func (o *Observer) ScopeCreated(_ *abortx.Signal) {
	o.scopesCreated.Inc()
}

// ScopeCancelled implements abortx.Observer.
func (o *Observer) ScopeCancelled(_ *abortx.Signal, _ error) {
	o.scopesCancelled.Inc()
}

// ScopeJoined implements abortx.Observer.
func (o *Observer) ScopeJoined(_ *abortx.Signal, wait time.Duration) {
	o.joinWait.Observe(wait.Seconds())
}

// TaskStarted implements abortx.Observer.
func (o *Observer) TaskStarted(_ *abortx.Signal) {
	o.tasksActive.Inc()
	o.tasksStarted.Inc()
}

// TaskFinished implements abortx.Observer.
func (o *Observer) TaskFinished(_ *abortx.Signal, dur time.Duration, err error, panicked bool) {
	o.tasksActive.Dec()
	o.taskDuration.Observe(dur.Seconds())
	switch {
	case err == nil:
	case abortx.IsAbortError(err):
		o.tasksAborted.Inc()
	default:
		o.tasksFailed.Inc()
	}
	if panicked {
		o.tasksPanicked.Inc()
	}
}
