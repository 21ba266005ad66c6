// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"testing"
	"time"
)

func TestSubscribePublish(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe("session-1")
	defer hub.Unsubscribe("session-1", id)

	hub.Publish(Event{Type: VoteRecorded, SessionID: "session-1"})

	select {
	case e := <-ch:
		if e.Type != VoteRecorded {
			t.Errorf("Expected event type %q, got %q", VoteRecorded, e.Type)
		}
		if e.SessionID != "session-1" {
			t.Errorf("Expected session-1, got %q", e.SessionID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestPublishScopedToSession(t *testing.T) {
	hub := NewHub()

	id1, ch1 := hub.Subscribe("session-1")
	defer hub.Unsubscribe("session-1", id1)
	id2, ch2 := hub.Subscribe("session-2")
	defer hub.Unsubscribe("session-2", id2)

	hub.Publish(Event{Type: ContentUpdated, SessionID: "session-1"})

	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatal("session-1 subscriber did not receive event")
	}

	select {
	case e := <-ch2:
		t.Errorf("session-2 subscriber received foreign event: %+v", e)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe("session-1")
	hub.Unsubscribe("session-1", id)

	if _, open := <-ch; open {
		t.Error("Expected channel to be closed after Unsubscribe")
	}
	if n := hub.SubscriberCount("session-1"); n != 0 {
		t.Errorf("Expected 0 subscribers, got %d", n)
	}

	// Publishing to a session with no subscribers must not panic
	hub.Publish(Event{Type: SessionUpdated, SessionID: "session-1"})
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe("session-1")
	defer hub.Unsubscribe("session-1", id)

	// Overfill the buffer; Publish must never block
	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Publish(Event{Type: VoteRecorded, SessionID: "session-1"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}

	if received != subscriberBuffer {
		t.Errorf("Expected %d buffered events, got %d", subscriberBuffer, received)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := NewHub()

	id1, ch1 := hub.Subscribe("session-1")
	defer hub.Unsubscribe("session-1", id1)
	id2, ch2 := hub.Subscribe("session-1")
	defer hub.Unsubscribe("session-1", id2)

	if n := hub.SubscriberCount("session-1"); n != 2 {
		t.Fatalf("Expected 2 subscribers, got %d", n)
	}

	hub.Publish(Event{Type: ScoresReady, SessionID: "session-1"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Type != ScoresReady {
				t.Errorf("Subscriber %d: expected %q, got %q", i, ScoresReady, e.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %d did not receive event", i)
		}
	}
}
