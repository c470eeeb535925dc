// Package event provides a minimal in-process named-event broadcaster and
// an abortable adapter for waiting on a single occurrence of an event.
package event

import "sync"

// Emitter broadcasts named events to registered listeners. The zero value
// is not usable; create one with NewEmitter.
type Emitter struct {
	mu   sync.Mutex
	next uint64
	subs map[string]map[uint64]*listener
}

type listener struct {
	fn   func(payload any)
	once bool
}

// Subscription is the revocable handle returned by Subscribe and Once.
type Subscription struct {
	name string
	id   uint64
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[string]map[uint64]*listener)}
}

// Subscribe registers fn for every future emission of name.
func (e *Emitter) Subscribe(name string, fn func(payload any)) Subscription {
	return e.add(name, fn, false)
}

// Once registers fn for the next emission of name only; the registration is
// removed before fn runs.
func (e *Emitter) Once(name string, fn func(payload any)) Subscription {
	return e.add(name, fn, true)
}

func (e *Emitter) add(name string, fn func(payload any), once bool) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	id := e.next
	m := e.subs[name]
	if m == nil {
		m = make(map[uint64]*listener)
		e.subs[name] = m
	}
	m[id] = &listener{fn: fn, once: once}
	return Subscription{name: name, id: id}
}

// Unsubscribe revokes a registration. Revoking one that has already been
// consumed by Once, or the zero Subscription, is a no-op.
func (e *Emitter) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}
	e.mu.Lock()
	if m := e.subs[sub.name]; m != nil {
		delete(m, sub.id)
	}
	e.mu.Unlock()
}

// Emit delivers payload to every listener of name, synchronously, in
// unspecified order.
func (e *Emitter) Emit(name string, payload any) {
	e.mu.Lock()
	m := e.subs[name]
	fns := make([]func(any), 0, len(m))
	for id, l := range m {
		fns = append(fns, l.fn)
		if l.once {
			delete(m, id)
		}
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
}
