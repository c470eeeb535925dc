// Package errgroup provides an adapter that mimics golang.org/x/sync/errgroup
// semantics on top of abortx signals. It enables incremental migration of
// errgroup-based code without changing call sites structurally.
package errgroup

import (
	"sync"

	"github.com/deeplay-io/abortx-go/abortx"
)

// Group is an errgroup-like fail-fast task group. The first genuine failure
// cancels the group signal handed to every function.
type Group struct {
	ctl     *abortx.Controller
	release func()

	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

// WithSignal creates a Group nested under sig. The returned signal is
// cancelled when any function passed to Go fails genuinely, or when sig
// itself is cancelled.
func WithSignal(sig *abortx.Signal) (*Group, *abortx.Signal) {
	ctl, release := abortx.NewNestedController(sig)
	g := &Group{ctl: ctl, release: release}
	return g, ctl.Signal()
}

// Go starts f on its own goroutine. A genuine (non-cancellation) error
// cancels the group; cancellation errors are treated as wind-down noise.
func (g *Group) Go(f func(sig *abortx.Signal) error) {
	if f == nil {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := f(g.ctl.Signal())
		if err == nil || abortx.IsAbortError(err) {
			return
		}
		g.mu.Lock()
		if g.firstErr == nil {
			g.firstErr = err
		}
		g.mu.Unlock()
		g.ctl.Trigger()
	}()
}

// Wait blocks until all functions have returned, detaches the group from
// its parent signal, and returns the first genuine error, if any.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.release()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}
