package abortx

import "sync"

// Abortable is the protocol every combinator consumes and produces: given a
// cancellation signal, perform one operation and return its result. An
// abortable function must fail with a cancellation error once the signal is
// cancelled, either immediately or after its own cleanup, and must remove
// any subscription it created exactly once, at settlement.
type Abortable[T any] func(sig *Signal) (T, error)

// Cleanup undoes the side effects of an Execute setup function after
// cancellation. A nil Cleanup, or a nil returned error, means nothing was
// pending. A non-nil error supersedes ErrAborted as Execute's outcome.
type Cleanup func() error

// Execute turns a callback-based operation into an abortable call.
//
// If sig is already cancelled, Execute fails with ErrAborted without
// invoking setup or subscribing. Otherwise setup runs synchronously, exactly
// once, and receives two completion callbacks of which only the first
// invocation has effect. When a completion callback settles the call first,
// the returned Cleanup is never run. When cancellation wins instead, the
// Cleanup runs and Execute fails with ErrAborted, unless the Cleanup itself
// fails, in which case that failure is the outcome. The signal subscription
// is removed exactly once, on whichever branch settles first.
func Execute[T any](sig *Signal, setup func(resolve func(T), reject func(error)) Cleanup) (T, error) {
	var zero T
	if sig.Cancelled() {
		return zero, ErrAborted
	}

	var (
		mu      sync.Mutex
		settled bool
		val     T
		res     error
	)
	done := make(chan struct{})
	resolve := func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if settled {
			return
		}
		settled = true
		val = v
		close(done)
	}
	reject := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if settled {
			return
		}
		settled = true
		res = err
		close(done)
	}

	cleanup := setup(resolve, reject)

	aborted := make(chan struct{})
	sub := sig.Subscribe(func() { close(aborted) })
	defer sig.Unsubscribe(sub)

	select {
	case <-done:
		return val, res
	case <-aborted:
	}

	// Cancellation raced a completion callback; whichever claimed
	// settlement first wins.
	mu.Lock()
	if settled {
		v, err := val, res
		mu.Unlock()
		return v, err
	}
	settled = true
	mu.Unlock()

	if cleanup != nil {
		if err := cleanup(); err != nil {
			return zero, err
		}
	}
	return zero, ErrAborted
}
