// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import "sync"

type EventType string

const (
	ContentUpdated EventType = "content_updated"
	VoteRecorded   EventType = "vote_recorded"
	SessionUpdated EventType = "session_updated"
	ScoresReady    EventType = "scores_ready"
)

// Event is a change notification scoped to one session. Data carries the
// affected row (content item, session, or score list) for the client.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
}

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts dropping events; clients are expected to
// re-fetch state on reconnect anyway.
const subscriberBuffer = 16

// Hub fans change notifications out to SSE subscribers, keyed by session.
// It is the only in-process shared state in the server.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan Event),
	}
}

// Subscribe registers a listener for one session's events. The returned id
// must be passed to Unsubscribe when the client disconnects.
func (h *Hub) Subscribe(sessionID string) (int, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan Event)
	}
	ch := make(chan Event, subscriberBuffer)
	h.subs[sessionID][id] = ch

	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(sessionID string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[sessionID]
	if subs == nil {
		return
	}
	if ch, ok := subs[id]; ok {
		delete(subs, id)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.subs, sessionID)
	}
}

// Publish delivers an event to every subscriber of its session without
// blocking: a full subscriber channel drops the event.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[e.SessionID] {
		select {
		case ch <- e:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}

// SubscriberCount returns the number of listeners for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
