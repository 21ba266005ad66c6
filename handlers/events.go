// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
)

type EventsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewEventsHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *EventsHandler {
	return &EventsHandler{db: db, cfg: cfg, hub: hub}
}

// Stream handles GET /events?session_id=|voter_key=
// Server-sent events: one frame per change in the session, until the
// client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID := query.Get("session_id")
	voterKey := query.Get("voter_key")

	var (
		where string
		arg   string
	)
	switch {
	case sessionID != "":
		where, arg = "id", sessionID
	case voterKey != "":
		where, arg = "voter_key", voterKey
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Must provide session_id or voter_key")
		return
	}

	session, err := getSession(h.db, where, arg)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := h.hub.Subscribe(session.ID)
	defer h.hub.Unsubscribe(session.ID, id)

	slog.Info("event stream opened", "session_id", session.ID, "subscriber", id)

	// Tell the client the subscription is live before any event fires.
	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("event stream closed", "session_id", session.ID, "subscriber", id)
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(e.Data)
			if err != nil {
				slog.Error("failed to marshal event", "error", err, "type", e.Type)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
