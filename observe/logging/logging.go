// Package logging provides an hclog-backed observer that logs scope and
// task lifecycle events.
package logging

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/deeplay-io/abortx-go/abortx"
)

// Observer logs scope and task lifecycle events. Routine events go out at
// trace and debug levels; genuine task failures are logged as errors.
type Observer struct {
	log hclog.Logger
}

// New returns an Observer writing through log. A nil log falls back to
// hclog.Default.
func New(log hclog.Logger) *Observer {
	if log == nil {
		log = hclog.Default()
	}
	return &Observer{log: log.Named("abortx")}
}

// ScopeCreated implements abortx.Observer.
func (o *Observer) ScopeCreated(_ *abortx.Signal) {
	o.log.Debug("scope created")
}

// ScopeCancelled implements abortx.Observer.
func (o *Observer) ScopeCancelled(_ *abortx.Signal, cause error) {
	o.log.Debug("scope cancelled", "cause", cause)
}

// ScopeJoined implements abortx.Observer.
func (o *Observer) ScopeJoined(_ *abortx.Signal, wait time.Duration) {
	o.log.Debug("scope joined", "wait", wait)
}

// TaskStarted implements abortx.Observer.
func (o *Observer) TaskStarted(_ *abortx.Signal) {
	o.log.Trace("task started")
}

// TaskFinished implements abortx.Observer.
func (o *Observer) TaskFinished(_ *abortx.Signal, dur time.Duration, err error, panicked bool) {
	switch {
	case err == nil:
		o.log.Trace("task finished", "duration", dur)
	case abortx.IsAbortError(err):
		o.log.Trace("task aborted", "duration", dur)
	default:
		o.log.Error("task failed", "error", err, "duration", dur, "panicked", panicked)
	}
}
