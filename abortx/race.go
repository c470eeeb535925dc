package abortx

import "sync"

const (
	rankAborted = iota
	rankFailed
	rankFulfilled
)

// Race runs every operation produced by factory under one derived signal,
// cancelling the derived signal on the first settlement of any of them,
// success or failure alike. It still waits for every operation to settle
// before returning.
//
// The returned outcome is chosen by priority across all observed
// settlements: a fulfillment outranks any failure, and a genuine failure
// outranks a cancellation failure, first arrival breaking ties. A sibling
// that fails genuinely therefore overrides an earlier-recorded cancellation
// failure even though it settles later.
//
// Race over zero operations blocks until sig is cancelled and returns
// ErrAborted.
func Race[T any](sig *Signal, factory func(inner *Signal) []Abortable[T]) (T, error) {
	var zero T
	ctl := NewController()
	fns := factory(ctl.Signal())
	if len(fns) == 0 {
		return zero, Forever(sig)
	}

	sub := sig.Subscribe(ctl.Trigger)
	defer sig.Unsubscribe(sub)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		rank = -1
		val  T
		res  error
	)
	record := func(v T, err error) {
		r := rankFulfilled
		switch {
		case err == nil:
		case IsAbortError(err):
			r = rankAborted
		default:
			r = rankFailed
		}
		mu.Lock()
		if r > rank {
			rank = r
			res = err
			if err == nil {
				val = v
			}
		}
		mu.Unlock()
	}
	for _, fn := range fns {
		wg.Add(1)
		go func(fn Abortable[T]) {
			defer wg.Done()
			v, err := fn(ctl.Signal())
			record(v, err)
			ctl.Trigger()
		}(fn)
	}
	wg.Wait()

	if res != nil {
		return zero, res
	}
	return val, nil
}
