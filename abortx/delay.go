package abortx

import "time"

// Delay waits for d to elapse. Cancellation stops the pending timer and
// returns ErrAborted.
func Delay(sig *Signal, d time.Duration) error {
	_, err := Execute(sig, func(resolve func(struct{}), _ func(error)) Cleanup {
		t := time.AfterFunc(d, func() { resolve(struct{}{}) })
		return func() error {
			t.Stop()
			return nil
		}
	})
	return err
}

// Forever blocks until sig is cancelled and returns ErrAborted.
func Forever(sig *Signal) error {
	_, err := Execute(sig, func(func(struct{}), func(error)) Cleanup {
		return nil
	})
	return err
}
