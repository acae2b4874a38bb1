package auth

import (
	"sync"

	"github.com/google/uuid"
)

// Listener is notified of auth state transitions. A nil session means
// nobody is signed in.
type Listener func(event Event, session *Session)

// Registry holds registered listeners in registration order and
// dispatches to them synchronously. It makes no auth decisions itself.
//
// Subscribe and Transition are serialized, so a new listener's initial
// callback is never interleaved with a state change: it either reflects
// the change or receives it afterwards. Listeners must not call back
// into Subscribe or Transition; Unsubscribe is fine.
type Registry struct {
	dispatch sync.Mutex

	mu        sync.RWMutex
	listeners []entry
}

type entry struct {
	id uuid.UUID
	fn Listener
}

// Subscription is the handle returned for a registered listener.
type Subscription struct {
	ID       uuid.UUID
	registry *Registry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers fn under a fresh handle. Every call yields a distinct
// handle, so the same handle never appears twice.
func (r *Registry) Add(fn Listener) *Subscription {
	id := uuid.New()

	r.mu.Lock()
	r.listeners = append(r.listeners, entry{id: id, fn: fn})
	r.mu.Unlock()

	return &Subscription{ID: id, registry: r}
}

// Subscribe reads the current session, registers fn and invokes it once
// with the matching initial event, all before any Transition can run.
func (r *Registry) Subscribe(fn Listener, current func() *Session) *Subscription {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	event, session := CurrentState(current())
	sub := r.Add(fn)
	fn(event, session)
	return sub
}

// Transition applies a state change and notifies every listener of its
// result before another Subscribe or Transition can start.
func (r *Registry) Transition(apply func() (Event, *Session)) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	event, session := apply()
	r.Notify(event, session)
}

// Remove drops the listener with the given handle. Removing an unknown
// handle is a no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.listeners {
		if e.id == id {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Notify calls every listener registered at call time, in registration
// order. Listeners removed during dispatch are skipped.
func (r *Registry) Notify(event Event, session *Session) {
	r.mu.RLock()
	snapshot := make([]entry, len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !r.has(e.id) {
			continue
		}
		e.fn(event, session)
	}
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *Registry) has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.listeners {
		if e.id == id {
			return true
		}
	}
	return false
}

// Unsubscribe removes the listener. Safe to call more than once, and
// from inside the listener itself.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.registry == nil {
		return
	}
	s.registry.Remove(s.ID)
}
