// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events provides the in-process change-notification hub.

Handlers publish an Event after committing a write; the /events SSE
endpoint subscribes a channel per connected client, scoped to one session:

	id, ch := hub.Subscribe(sessionID)
	defer hub.Unsubscribe(sessionID, id)
	for e := range ch {
		// write SSE frame
	}

Delivery is best-effort: Publish never blocks, and a subscriber whose
buffer is full misses events. Clients treat the stream as an invalidation
signal and re-fetch state, so a dropped event costs one poll, not
correctness. There is no ordering guarantee between a write and a
subscriber observing it beyond the store's own consistency.
*/
package events
