package session

import (
	"sync"
)

// Listener is invoked with the new snapshot after a transition.
type Listener func(Snapshot)

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id       uint64
	registry *registry
	once     sync.Once
}

// Unsubscribe removes the listener. It is safe to call more than once and from
// inside a listener; a notification pass already running is not affected.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.registry == nil {
		return
	}
	s.once.Do(func() {
		s.registry.remove(s.id)
	})
}

type registration struct {
	id       uint64
	listener Listener
}

// registry is an insertion-ordered listener list.
type registry struct {
	mu      sync.Mutex
	nextID  uint64
	entries []registration
}

func (r *registry) add(l Listener) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.entries = append(r.entries, registration{id: r.nextID, listener: l})
	return &Subscription{id: r.nextID, registry: r}
}

func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			// copy so passes holding the previous slice keep their view
			next := make([]registration, 0, len(r.entries)-1)
			next = append(next, r.entries[:i]...)
			next = append(next, r.entries[i+1:]...)
			r.entries = next
			return
		}
	}
}

func (r *registry) listeners() []registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// notify delivers snap to every listener registered when the pass starts.
// A panicking listener is reported through onPanic and the pass continues.
func (r *registry) notify(snap Snapshot, onPanic func(any)) {
	for _, e := range r.listeners() {
		deliver(e.listener, snap, onPanic)
	}
}

func deliver(l Listener, snap Snapshot, onPanic func(any)) {
	defer func() {
		if rec := recover(); rec != nil && onPanic != nil {
			onPanic(rec)
		}
	}()
	l(snap)
}
