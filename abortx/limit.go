package abortx

// Limiter bounds how many forks of a scope run concurrently.
type Limiter interface {
	Acquire(sig *Signal) error
	Release()
}

type semLimiter struct {
	ch chan struct{}
}

func newSemaphoreLimiter(n int) Limiter {
	if n <= 0 {
		return nil
	}
	return &semLimiter{ch: make(chan struct{}, n)}
}

func (l *semLimiter) Acquire(sig *Signal) error {
	if sig.Cancelled() {
		return ErrAborted
	}
	aborted := make(chan struct{})
	sub := sig.Subscribe(func() { close(aborted) })
	defer sig.Unsubscribe(sub)
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-aborted:
		return ErrAborted
	}
}

func (l *semLimiter) Release() {
	select {
	case <-l.ch:
	default:
	}
}
