package feed

import (
	"sync"

	"bhelpuri/internal/models"
)

// Hub broadcasts full order-list snapshots to its subscribers. Every
// publish delivers the complete, already-sorted list; subscribers
// replace whatever they held before, there is no partial merge. A slow
// subscriber never blocks a publish: a pending snapshot it has not read
// yet is simply replaced by the newer one.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan []models.Order
	next int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]chan []models.Order),
	}
}

// Subscribe registers a new subscriber and returns its snapshot channel
// together with a cancel function. Cancel must be called when the
// consumer is torn down; it closes the channel.
func (h *Hub) Subscribe() (<-chan []models.Order, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan []models.Order, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber. If a subscriber
// still has an unread snapshot buffered, that stale one is dropped
// first; only the latest snapshot matters.
func (h *Hub) Publish(snapshot []models.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case <-ch: // drop the stale pending snapshot
		default:
		}
		ch <- snapshot
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
