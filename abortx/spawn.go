package abortx

import (
	"fmt"
	"sync"
	"time"
)

// Task is an outstanding unit of background work owned by a scope.
type Task struct {
	id   uint64
	ctl  *Controller
	done chan struct{}
	err  error
}

// Abort requests cancellation of this task. Aborting twice is observably
// identical to aborting once.
func (t *Task) Abort() { t.ctl.Trigger() }

// Done returns a channel closed once the task has settled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Join waits for the task to settle and returns its outcome. Join follows
// the abortable protocol: cancelling sig makes it return ErrAborted without
// affecting the task itself.
func (t *Task) Join(sig *Signal) error {
	if sig.Cancelled() {
		return ErrAborted
	}
	aborted := make(chan struct{})
	sub := sig.Subscribe(func() { close(aborted) })
	defer sig.Unsubscribe(sub)
	select {
	case <-t.done:
		return t.err
	case <-aborted:
		return ErrAborted
	}
}

func newCancelledTask() *Task {
	t := &Task{ctl: NewController(), done: make(chan struct{}), err: ErrAborted}
	t.ctl.Trigger()
	close(t.done)
	return t
}

// Scope coordinates the forks and deferred cleanups of one Spawn call. It is
// only valid inside the body passed to Spawn.
type Scope struct {
	ctl  *Controller
	opts Options
	lim  Limiter
	idle chan struct{}

	mu        sync.Mutex
	nextID    uint64
	live      map[uint64]*Task
	deferred  []func() error
	firstErr  error
	root      *Task
	cancelled bool
}

// Signal returns the scope-local cancellation signal. It is cancelled when
// the outer signal cancels, when any fork fails genuinely, or when the root
// body settles.
func (sc *Scope) Signal() *Signal { return sc.ctl.Signal() }

// Fork starts fn as a child task under its own derived signal and registers
// it in the scope's live set. If the scope is already winding down, fn is
// never invoked and a pre-cancelled task comes back: its Abort is a no-op
// and its Join returns ErrAborted immediately.
func (sc *Scope) Fork(fn func(*Signal) error) *Task {
	return sc.fork(fn, false)
}

// Defer appends fn to the scope's cleanup stack. Once the live task set
// empties, deferred functions run serially in reverse registration order;
// the first failure among them replaces the result Spawn was about to
// produce.
func (sc *Scope) Defer(fn func() error) {
	sc.mu.Lock()
	sc.deferred = append(sc.deferred, fn)
	sc.mu.Unlock()
}

func (sc *Scope) fork(fn func(*Signal) error, root bool) *Task {
	sc.mu.Lock()
	if sc.cancelled {
		sc.mu.Unlock()
		return newCancelledTask()
	}
	t := &Task{ctl: NewController(), done: make(chan struct{})}
	sc.nextID++
	t.id = sc.nextID
	sc.live[t.id] = t
	if root {
		sc.root = t
	}
	sc.mu.Unlock()

	sub := sc.ctl.Signal().Subscribe(t.ctl.Trigger)

	go func() {
		start := time.Now()
		if obs := sc.opts.Observer; obs != nil {
			obs.TaskStarted(sc.Signal())
		}
		defer func() {
			if r := recover(); r != nil {
				sc.settle(t, sub, fmt.Errorf("panic: %v", r), start, true)
				if !sc.opts.PanicAsError {
					panic(r)
				}
			}
		}()
		if sc.lim != nil {
			if err := sc.lim.Acquire(t.ctl.Signal()); err != nil {
				sc.settle(t, sub, err, start, false)
				return
			}
			defer sc.lim.Release()
		}
		sc.settle(t, sub, fn(t.ctl.Signal()), start, false)
	}()
	return t
}

// settle records a task's outcome, removes it from the live set, and fans
// out cancellation: a genuine failure, or any settlement of the root task,
// cancels the whole scope.
func (sc *Scope) settle(t *Task, sub Subscription, err error, start time.Time, panicked bool) {
	sc.ctl.Signal().Unsubscribe(sub)
	t.err = err
	close(t.done)

	sc.mu.Lock()
	delete(sc.live, t.id)
	idle := len(sc.live) == 0
	genuine := err != nil && !IsAbortError(err)
	if genuine && sc.firstErr == nil {
		sc.firstErr = err
	}
	cause := sc.firstErr
	root := t == sc.root
	sc.mu.Unlock()

	if genuine || root {
		sc.cancel(cause)
	}
	if obs := sc.opts.Observer; obs != nil {
		obs.TaskFinished(sc.Signal(), time.Since(start), err, panicked)
	}
	if idle {
		close(sc.idle)
	}
}

func (sc *Scope) cancel(cause error) {
	sc.mu.Lock()
	first := !sc.cancelled
	sc.cancelled = true
	sc.mu.Unlock()
	sc.ctl.Trigger()
	if first {
		if obs := sc.opts.Observer; obs != nil {
			obs.ScopeCancelled(sc.Signal(), cause)
		}
	}
}

func (sc *Scope) runDeferred(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if !sc.opts.PanicAsError {
				panic(r)
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Spawn runs body as the root task of a new structured scope derived from
// sig. The body may start background children through sc.Fork and register
// cleanup through sc.Defer; the root runs through the same fork machinery as
// its children, so bookkeeping is uniform.
//
// Once the root settles, or any fork fails genuinely, the scope-local signal
// cancels every remaining task. Spawn itself only settles after the live
// task set has emptied and the deferred stack has run. Its result is the
// root's value, unless a genuine failure was recorded, in which case that
// failure wins; cancellation failures of forks that were shut down as part
// of the scope's own wind-down are never surfaced. A deferred cleanup
// failure replaces whichever outcome was about to be produced.
//
// If sig is already cancelled, Spawn fails with ErrAborted and body never
// runs.
func Spawn[T any](sig *Signal, body func(sig *Signal, sc *Scope) (T, error), optFns ...Option) (T, error) {
	var zero T
	if sig.Cancelled() {
		return zero, ErrAborted
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	sc := &Scope{
		ctl:  NewController(),
		opts: opts,
		lim:  newSemaphoreLimiter(opts.MaxConcurrency),
		idle: make(chan struct{}),
		live: make(map[uint64]*Task),
	}
	if obs := opts.Observer; obs != nil {
		obs.ScopeCreated(sc.Signal())
	}

	outer := sig.Subscribe(func() { sc.cancel(ErrAborted) })

	var rootVal T
	root := sc.fork(func(s *Signal) error {
		v, err := body(s, sc)
		if err == nil {
			rootVal = v
		}
		return err
	}, true)
	if root.id == 0 {
		// sig cancelled between the fast-path check and the root fork.
		sig.Unsubscribe(outer)
		return zero, ErrAborted
	}

	start := time.Now()
	<-sc.idle
	sig.Unsubscribe(outer)
	if obs := opts.Observer; obs != nil {
		obs.ScopeJoined(sc.Signal(), time.Since(start))
	}

	sc.mu.Lock()
	primary := sc.firstErr
	deferred := sc.deferred
	sc.deferred = nil
	sc.mu.Unlock()
	if primary == nil {
		primary = root.err
	}

	// Two-phase settlement: the primary outcome is fixed first, then the
	// cleanup stack runs and a cleanup failure replaces it.
	var cleanupErr error
	for i := len(deferred) - 1; i >= 0; i-- {
		if err := sc.runDeferred(deferred[i]); err != nil && cleanupErr == nil {
			cleanupErr = err
		}
	}
	switch {
	case cleanupErr != nil:
		return zero, cleanupErr
	case primary != nil:
		return zero, primary
	}
	return rootVal, nil
}
