// Package notify fans values out to subscribers.
package notify

import (
	"slices"
	"sync"
)

// Hub delivers every published value to every current subscriber, in
// publish order. Delivery is synchronous and serialized, so a subscriber
// never sees two values at once and never sees them out of order.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)

	dispatch sync.Mutex
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (h *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish calls each subscriber with v. Subscribers must not publish to
// the same hub from inside their callback.
func (h *Hub[T]) Publish(v T) {
	h.dispatch.Lock()
	defer h.dispatch.Unlock()

	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
