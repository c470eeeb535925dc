package abortx

import "time"

// Option configures a Spawn call.
type Option func(*Options)

// Options holds the configurable behavior of one Spawn call.
type Options struct {
	PanicAsError   bool
	Observer       Observer
	MaxConcurrency int
}

func defaultOptions() Options { return Options{PanicAsError: true} }

// WithPanicAsError controls whether a panicking fork is converted into a
// genuine error (the default) or re-panicked on the fork's goroutine.
func WithPanicAsError(v bool) Option { return func(o *Options) { o.PanicAsError = v } }

// WithObserver attaches lifecycle hooks to the scope.
func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithMaxConcurrency bounds how many tasks of the scope run at once, the
// root included; excess forks wait, abortably, for a slot. Zero or negative
// means unbounded.
func WithMaxConcurrency(n int) Option { return func(o *Options) { o.MaxConcurrency = n } }

// Observer receives scope and task lifecycle events. Implementations must be
// safe for concurrent use; hooks are called from task goroutines.
type Observer interface {
	ScopeCreated(sig *Signal)
	ScopeCancelled(sig *Signal, cause error)
	ScopeJoined(sig *Signal, wait time.Duration)
	TaskStarted(sig *Signal)
	TaskFinished(sig *Signal, dur time.Duration, err error, panicked bool)
}
