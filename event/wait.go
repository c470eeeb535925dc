package event

import "github.com/deeplay-io/abortx-go/abortx"

// WaitFor blocks until the named event is next emitted and returns its
// payload. Cancelling sig removes the listener and returns ErrAborted.
func WaitFor(sig *abortx.Signal, e *Emitter, name string) (any, error) {
	return abortx.Execute(sig, func(resolve func(any), _ func(error)) abortx.Cleanup {
		sub := e.Once(name, func(payload any) { resolve(payload) })
		return func() error {
			e.Unsubscribe(sub)
			return nil
		}
	})
}
