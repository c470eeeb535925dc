package abortx

import "sync"

// All runs every operation produced by factory under one derived signal and
// waits for all of them to settle. The derived signal is cancelled when sig
// is cancelled or when any operation fails, so siblings of a failed
// operation wind down instead of running unobserved.
//
// On success the results preserve input position, regardless of completion
// order. On failure the first genuine (non-cancellation) error wins over any
// cancellation error recorded before or after it; among errors of equal
// priority the first one recorded wins. An empty factory result resolves to
// an empty slice immediately, without subscribing to sig.
func All[T any](sig *Signal, factory func(inner *Signal) []Abortable[T]) ([]T, error) {
	ctl := NewController()
	fns := factory(ctl.Signal())
	if len(fns) == 0 {
		return []T{}, nil
	}

	sub := sig.Subscribe(ctl.Trigger)
	defer sig.Unsubscribe(sub)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make([]T, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn Abortable[T]) {
			defer wg.Done()
			v, err := fn(ctl.Signal())
			if err != nil {
				mu.Lock()
				if firstErr == nil || (IsAbortError(firstErr) && !IsAbortError(err)) {
					firstErr = err
				}
				mu.Unlock()
				ctl.Trigger()
				return
			}
			results[i] = v
		}(i, fn)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
