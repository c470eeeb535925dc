// Package ctxconv bridges context.Context and abortx signals in both
// directions, so abortable code can sit inside context-driven call trees
// and vice versa.
package ctxconv

import (
	"context"
	"sync"

	"github.com/deeplay-io/abortx-go/abortx"
)

// FromContext derives a signal that is cancelled when ctx is done. The
// release function detaches the watcher; call it once the signal is no
// longer needed, or the watcher goroutine lives until ctx ends.
func FromContext(ctx context.Context) (*abortx.Signal, func()) {
	ctl := abortx.NewController()
	if ctx.Done() == nil {
		return ctl.Signal(), func() {}
	}
	if ctx.Err() != nil {
		ctl.Trigger()
		return ctl.Signal(), func() {}
	}
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		select {
		case <-ctx.Done():
			ctl.Trigger()
		case <-stop:
		}
	}()
	return ctl.Signal(), func() {
		once.Do(func() { close(stop) })
	}
}

// ToContext derives a context that is cancelled when sig is cancelled. The
// returned cancel function detaches the subscription and must be called to
// avoid leaking it, exactly like context.WithCancel.
func ToContext(parent context.Context, sig *abortx.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sub := sig.Subscribe(func() { cancel() })
	return ctx, func() {
		sig.Unsubscribe(sub)
		cancel()
	}
}
