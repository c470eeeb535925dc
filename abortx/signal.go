package abortx

import "sync"

// Signal is the read-only view of a one-shot cancellation flag. It starts
// pending and transitions to cancelled at most once, ever. Callbacks
// registered through Subscribe fire synchronously inside the owning
// controller's Trigger call.
type Signal struct {
	mu   sync.Mutex
	set  bool
	done chan struct{}
	subs map[uint64]func()
	next uint64
}

// Subscription is the revocable handle returned by Subscribe. The zero
// Subscription is valid and revokes nothing.
type Subscription struct {
	id uint64
}

func newSignal() *Signal {
	return &Signal{
		done: make(chan struct{}),
		subs: make(map[uint64]func()),
	}
}

// Cancelled reports whether the signal has been triggered.
func (s *Signal) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Done returns a channel that is closed once the signal is cancelled.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Subscribe registers fn to run when the signal is cancelled. If the signal
// is already cancelled, fn runs synchronously before Subscribe returns and
// the zero Subscription comes back. Each registered callback runs at most
// once.
func (s *Signal) Subscribe(fn func()) Subscription {
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		fn()
		return Subscription{}
	}
	s.next++
	id := s.next
	s.subs[id] = fn
	s.mu.Unlock()
	return Subscription{id: id}
}

// Unsubscribe revokes a previous registration. Revoking the zero
// Subscription, or one whose callback has already fired, is a no-op.
func (s *Signal) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}
	s.mu.Lock()
	delete(s.subs, sub.id)
	s.mu.Unlock()
}

// Controller is the sole owner of one Signal and the only way to cancel it.
type Controller struct {
	sig *Signal
}

// NewController returns a controller over a fresh, pending signal.
func NewController() *Controller {
	return &Controller{sig: newSignal()}
}

// Signal returns the controlled signal.
func (c *Controller) Signal() *Signal {
	return c.sig
}

// Trigger cancels the signal. The first call fires every registered
// callback synchronously, in unspecified order; later calls do nothing.
func (c *Controller) Trigger() {
	s := c.sig
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return
	}
	s.set = true
	close(s.done)
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subs = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// NewNestedController returns a controller whose signal is cancelled as soon
// as any parent signal is cancelled, in addition to its own Trigger calls.
// The release function detaches the parent subscriptions; call it once the
// derived signal is no longer needed.
func NewNestedController(parents ...*Signal) (*Controller, func()) {
	ctl := NewController()
	subs := make([]Subscription, len(parents))
	for i, p := range parents {
		subs[i] = p.Subscribe(ctl.Trigger)
	}
	release := func() {
		for i, p := range parents {
			p.Unsubscribe(subs[i])
		}
	}
	return ctl, release
}
