// Package reactive provides live, push-based query results over the row
// store: an observation emits the current result immediately and re-emits
// after every write that touches its record family.
package reactive

import "sync"

// Hub is a subscriber registry for one record family. The store broadcasts
// after every durable write; each subscriber holds a one-slot dirty channel
// so broadcasting never blocks on a slow observer.
type Hub struct {
	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan struct{})}
}

// Subscribe registers a new subscriber and returns its id and dirty channel.
// The channel receives at most one pending signal regardless of how many
// broadcasts happen while the subscriber is busy.
func (h *Hub) Subscribe() (uint64, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Broadcast marks every subscriber dirty. Non-blocking: a subscriber that
// already has a pending signal is left as is, which conflates intermediate
// states but never loses the fact that a recompute is due.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
