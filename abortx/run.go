package abortx

// Run starts fn on its own goroutine under a fresh controller and returns a
// stop function. Calling stop triggers cancellation, waits for fn to
// return, and reports its outcome with cancellation errors treated as a
// clean shutdown. stop may be called more than once; every call returns the
// same outcome.
func Run(fn func(sig *Signal) error) (stop func() error) {
	ctl := NewController()
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = fn(ctl.Signal())
	}()
	return func() error {
		ctl.Trigger()
		<-done
		return IgnoreAbort(err)
	}
}

// Detach runs fn, which is not cancellation aware, on its own goroutine and
// waits for it abortably. On cancellation Detach returns ErrAborted right
// away while fn keeps running in the background; its eventual result is
// discarded.
func Detach[T any](sig *Signal, fn func() (T, error)) (T, error) {
	return Execute(sig, func(resolve func(T), reject func(error)) Cleanup {
		go func() {
			v, err := fn()
			if err != nil {
				reject(err)
				return
			}
			resolve(v)
		}()
		return nil
	})
}
