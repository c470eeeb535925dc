package retry

import (
	"sync"

	"github.com/deeplay-io/abortx-go/abortx"
)

// Proactive runs hedged attempts of fn: a new attempt is launched on every
// backoff tick while earlier attempts keep running. The first success
// cancels every other in-flight attempt and becomes the result. Attempts
// are launched until MaxAttempts is reached; only after every in-flight
// attempt has settled does Proactive surface the most recently recorded
// genuine failure.
//
// With MaxAttempts unset, a permanently failing operation hedges forever;
// cancel sig to stop it.
func Proactive[T any](sig *abortx.Signal, fn func(sig *abortx.Signal, attempt int) (T, error), opts Options) (T, error) {
	var zero T
	o := opts.withDefaults()

	ctl, release := abortx.NewNestedController(sig)
	defer release()
	inner := ctl.Signal()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     bool
		val     T
		lastErr error
	)
	launch := func(attempt int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fn(inner, attempt)
			mu.Lock()
			switch {
			case err == nil:
				if !won {
					won = true
					val = v
				}
				mu.Unlock()
				ctl.Trigger()
				return
			case !abortx.IsAbortError(err):
				lastErr = err
			}
			mu.Unlock()
		}()
	}

	for attempt := 0; ; attempt++ {
		launch(attempt)
		if o.MaxAttempts > 0 && attempt+1 >= o.MaxAttempts {
			break
		}
		if err := abortx.Delay(inner, backoff(o, attempt)); err != nil {
			// A success or outer cancellation ended the launch schedule.
			break
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	switch {
	case won:
		return val, nil
	case sig.Cancelled():
		return zero, abortx.ErrAborted
	case lastErr != nil:
		return zero, lastErr
	}
	return zero, abortx.ErrAborted
}
