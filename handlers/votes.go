// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
	"github.com/danielhkuo/screenroom/models"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, hub: hub}
}

// SubmitVote handles POST /votes
// One vote per voter per item; resubmitting replaces the score. The
// upsert and the item recompute run in one transaction, so two voters
// racing on the same item cannot double-count either of them.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ContentItemID == "" || req.SessionID == "" || req.VoterSessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content_item_id, session_id, and voter_session_id are required")
		return
	}
	if req.Score == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score is required")
		return
	}
	score := *req.Score
	if score != math.Trunc(score) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be an integer")
		return
	}
	if score < models.MinScore || score > models.MaxScore {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be between 0 and 10")
		return
	}

	item, err := getContentItem(h.db, req.ContentItemID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Content item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query content item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if item.SessionID != req.SessionID {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id does not match content item")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	vote := models.Vote{
		ContentItemID:  req.ContentItemID,
		SessionID:      req.SessionID,
		Score:          int(score),
		VoterSessionID: req.VoterSessionID,
	}

	// On conflict the existing row keeps its id and created_at;
	// only the score changes.
	err = tx.QueryRow(`
		INSERT INTO vote (id, content_item_id, session_id, score, voter_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_item_id, voter_session_id)
		DO UPDATE SET score = EXCLUDED.score
		RETURNING id, created_at
	`, uuid.NewString(), vote.ContentItemID, vote.SessionID, vote.Score,
		vote.VoterSessionID, time.Now()).Scan(&vote.ID, &vote.CreatedAt)
	if err != nil {
		slog.Error("failed to upsert vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	var (
		voteCount int
		scoreSum  int
	)
	err = tx.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(score), 0)
		FROM vote
		WHERE content_item_id = $1
	`, req.ContentItemID).Scan(&voteCount, &scoreSum)
	if err != nil {
		slog.Error("failed to aggregate votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	average := round2(float64(scoreSum) / float64(voteCount))
	_, err = tx.Exec(`
		UPDATE content_item
		SET current_vote_count = $1, average_score = $2
		WHERE id = $3
	`, voteCount, average, req.ContentItemID)
	if err != nil {
		slog.Error("failed to update content aggregate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	// Best effort: remember that this voter participated in the
	// session. A failure here never fails the vote.
	if err := touchVoterRegistration(h.db, req.VoterSessionID, req.SessionID); err != nil {
		slog.Warn("failed to touch voter registration", "error", err, "voter_session_id", req.VoterSessionID)
	}

	slog.Info("vote recorded",
		"content_id", req.ContentItemID,
		"score", vote.Score,
		"vote_count", voteCount,
	)

	item.CurrentVoteCount = voteCount
	item.AverageScore = &average

	h.hub.Publish(events.Event{
		Type:      events.VoteRecorded,
		SessionID: req.SessionID,
		Data:      vote,
	})
	h.hub.Publish(events.Event{
		Type:      events.ContentUpdated,
		SessionID: req.SessionID,
		Data:      item,
	})

	middleware.JSONResponse(w, http.StatusCreated, vote)
}

// ListVotes handles GET /votes?session_id=&content_item_id=
func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	contentItemID := r.URL.Query().Get("content_item_id")
	if sessionID == "" && contentItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Must provide session_id or content_item_id")
		return
	}

	query := `
		SELECT id, content_item_id, session_id, score, voter_session_id, created_at
		FROM vote
		WHERE 1 = 1
	`
	args := []any{}
	if sessionID != "" {
		args = append(args, sessionID)
		query += ` AND session_id = $1`
	}
	if contentItemID != "" {
		args = append(args, contentItemID)
		if len(args) == 2 {
			query += ` AND content_item_id = $2`
		} else {
			query += ` AND content_item_id = $1`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		err := rows.Scan(&v.ID, &v.ContentItemID, &v.SessionID, &v.Score, &v.VoterSessionID, &v.CreatedAt)
		if err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		votes = append(votes, v)
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteListResponse{Votes: votes})
}
