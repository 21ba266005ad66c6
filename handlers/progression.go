// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/screenroom/auth"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
	"github.com/danielhkuo/screenroom/models"
)

// Advance handles POST /sessions/{id}/advance
//
// One call moves the session forward a single step: the item currently
// open for voting is closed, and either the next pending item opens or,
// when none remain, the session completes and editor scores are
// snapshotted. The whole step is one transaction, so two directors
// clicking at once cannot skip an item.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	session, err := getSession(h.db, "id", id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.ValidateKey(r.Header.Get("X-Director-Key"), session.DirectorKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid director key")
		return
	}

	if session.Status == models.SessionCompleted {
		middleware.ErrorResponse(w, http.StatusConflict, "Session is already completed")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Close whatever is currently open for voting.
	var (
		currentID    string
		currentIndex = -1
		hasCurrent   bool
	)
	err = tx.QueryRow(`
		SELECT id, order_index
		FROM content_item
		WHERE session_id = $1 AND status = $2
		ORDER BY order_index ASC
		LIMIT 1
	`, session.ID, models.ContentVoting).Scan(&currentID, &currentIndex)
	switch err {
	case nil:
		hasCurrent = true
	case sql.ErrNoRows:
		// Nothing open; the first advance of a draft session
		// lands here.
	default:
		slog.Error("failed to query current item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if hasCurrent {
		_, err = tx.Exec(`
			UPDATE content_item SET status = $1 WHERE id = $2
		`, models.ContentCompleted, currentID)
		if err != nil {
			slog.Error("failed to close current item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance session")
			return
		}
	}

	// Open the next pending item in presentation order.
	var next models.ContentItem
	hasNext := true
	err = tx.QueryRow(`
		SELECT `+contentColumns+`
		FROM content_item
		WHERE session_id = $1 AND status = $2 AND order_index > $3
		ORDER BY order_index ASC
		LIMIT 1
	`, session.ID, models.ContentPending, currentIndex).Scan(
		&next.ID, &next.SessionID, &next.Title, &next.Link, &next.CreatorName,
		&next.OrderIndex, &next.CurrentVoteCount, &next.AverageScore,
		&next.Status, &next.CreatedAt,
	)
	if err == sql.ErrNoRows {
		hasNext = false
	} else if err != nil {
		slog.Error("failed to query next item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var scores []models.EditorScore
	if hasNext {
		_, err = tx.Exec(`
			UPDATE content_item SET status = $1 WHERE id = $2
		`, models.ContentVoting, next.ID)
		if err != nil {
			slog.Error("failed to open next item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance session")
			return
		}
		next.Status = models.ContentVoting
		session.Status = models.SessionActive
	} else {
		scores, _, err = ComputeOrFetchEditorScores(tx, session.ID)
		if err != nil {
			slog.Error("failed to compute editor scores", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance session")
			return
		}
		session.Status = models.SessionCompleted
	}

	session.UpdatedAt = time.Now()
	_, err = tx.Exec(`
		UPDATE review_session SET status = $1, updated_at = $2 WHERE id = $3
	`, session.Status, session.UpdatedAt, session.ID)
	if err != nil {
		slog.Error("failed to update session status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit advance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance session")
		return
	}

	slog.Info("session advanced",
		"session_id", session.ID,
		"status", session.Status,
		"closed_current", hasCurrent,
	)

	if hasCurrent {
		if closed, err := getContentItem(h.db, currentID); err == nil {
			h.hub.Publish(events.Event{
				Type:      events.ContentUpdated,
				SessionID: session.ID,
				Data:      closed,
			})
		}
	}

	resp := models.AdvanceResponse{Session: session}
	if hasNext {
		resp.CurrentItem = &next
		h.hub.Publish(events.Event{
			Type:      events.ContentUpdated,
			SessionID: session.ID,
			Data:      next,
		})
	} else {
		resp.Completed = true
		resp.Scores = scores
		h.hub.Publish(events.Event{
			Type:      events.ScoresReady,
			SessionID: session.ID,
			Data:      scores,
		})
	}

	h.hub.Publish(events.Event{
		Type:      events.SessionUpdated,
		SessionID: session.ID,
		Data:      session,
	})

	middleware.JSONResponse(w, http.StatusOK, resp)
}
