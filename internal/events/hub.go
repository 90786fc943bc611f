// Package events is a small in-process pub/sub channel from the activity
// log to live dashboard subscribers. The poll endpoints stay the canonical
// interface; this stream is a convenience on top of them.
package events

import (
	"sync"

	"remote-support-backend/internal/model"
)

const subscriberBuffer = 16

// Hub fans activity events out to subscribers. Publishing never blocks: a
// subscriber that cannot keep up has events dropped, since every event is
// also durable in the activity log.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan model.ActivityEvent]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.ActivityEvent]struct{})}
}

// Subscribe registers a new subscriber and returns its event channel.
func (h *Hub) Subscribe() chan model.ActivityEvent {
	ch := make(chan model.ActivityEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan model.ActivityEvent) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers an event to every subscriber that has buffer room.
func (h *Hub) Publish(ev model.ActivityEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is falling behind; it can catch up via the poll API.
		}
	}
}

// SubscriberCount reports the current number of subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
