// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/models"
	"github.com/danielhkuo/screenroom/testutil"
)

// streamRecorder is a concurrency-safe ResponseWriter that signals on
// every flush, so the test can wait for frames instead of sleeping.
type streamRecorder struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	header  http.Header
	flushed chan struct{}
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{
		header:  make(http.Header),
		flushed: make(chan struct{}, 16),
	}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *streamRecorder) WriteHeader(statusCode int) {}

func (r *streamRecorder) Flush() {
	select {
	case r.flushed <- struct{}{}:
	default:
	}
}

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func waitFlush(t *testing.T, rec *streamRecorder) {
	t.Helper()
	select {
	case <-rec.flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a flushed frame")
	}
}

func TestEventStreamValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventsHandler(db, cfg, events.NewHub())

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "no selector", query: "", wantStatus: http.StatusBadRequest},
		{name: "unknown session", query: "?session_id=nonexistent", wantStatus: http.StatusNotFound},
		{name: "unknown voter key", query: "?voter_key=nonexistent", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/events"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.Stream(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)
		})
	}
}

func TestEventStreamDeliversEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	hub := events.NewHub()
	handler := NewEventsHandler(db, cfg, hub)

	session := testutil.CreateTestSession(t, db, models.SessionActive)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events?voter_key="+session.VoterKey, nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.Stream(rec, req)
	}()

	// The ready frame confirms the subscription is live
	waitFlush(t, rec)

	hub.Publish(events.Event{
		Type:      events.VoteRecorded,
		SessionID: session.ID,
		Data:      models.Vote{ID: "vote-1", Score: 7},
	})
	waitFlush(t, rec)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not terminate on client disconnect")
	}

	body := rec.body()
	if !strings.Contains(body, "event: ready") {
		t.Errorf("Expected ready frame, got %q", body)
	}
	if !strings.Contains(body, "event: vote_recorded") {
		t.Errorf("Expected vote_recorded frame, got %q", body)
	}
	if !strings.Contains(body, `"vote-1"`) {
		t.Errorf("Expected event payload in stream, got %q", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Expected SSE content type, got %q", rec.Header().Get("Content-Type"))
	}

	if hub.SubscriberCount(session.ID) != 0 {
		t.Error("Expected subscriber to be removed after disconnect")
	}
}
