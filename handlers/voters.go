// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
	"github.com/danielhkuo/screenroom/models"
)

// VoterHandler tracks which sessions a browser-generated voter identity
// has joined. The identity itself is minted client-side and carried in
// the X-Voter-Session-ID header; the server only remembers the link.
type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg, hub: hub}
}

// touchVoterRegistration records that a voter participated in a session,
// creating the link if it does not exist yet.
func touchVoterRegistration(q dbtx, voterSessionID, sessionID string) error {
	now := time.Now()
	_, err := q.Exec(`
		INSERT INTO voter_registration (voter_session_id, session_id, display_name, created_at, last_seen_at)
		VALUES ($1, $2, NULL, $3, $3)
		ON CONFLICT (voter_session_id, session_id)
		DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
	`, voterSessionID, sessionID, now)
	return err
}

// Register handles POST /voters/register
// Links the caller's voter identity to the session behind a voter key.
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	voterSessionID := r.Header.Get("X-Voter-Session-ID")
	if voterSessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Voter-Session-ID header is required")
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterKey == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_key is required")
		return
	}

	session, err := getSession(h.db, "voter_key", req.VoterKey)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	var existing time.Time
	err = h.db.QueryRow(`
		SELECT created_at FROM voter_registration
		WHERE voter_session_id = $1 AND session_id = $2
	`, voterSessionID, session.ID).Scan(&existing)

	now := time.Now()
	isNew := false
	switch err {
	case nil:
		_, err = h.db.Exec(`
			UPDATE voter_registration
			SET last_seen_at = $1, display_name = COALESCE($2, display_name)
			WHERE voter_session_id = $3 AND session_id = $4
		`, now, displayName, voterSessionID, session.ID)
	case sql.ErrNoRows:
		isNew = true
		_, err = h.db.Exec(`
			INSERT INTO voter_registration (voter_session_id, session_id, display_name, created_at, last_seen_at)
			VALUES ($1, $2, $3, $4, $4)
		`, voterSessionID, session.ID, displayName, now)
	default:
		slog.Error("failed to query voter registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err != nil {
		slog.Error("failed to save voter registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered",
		"voter_session_id", voterSessionID,
		"session_id", session.ID,
		"is_new", isNew,
	)

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.RegisterVoterResponse{
		VoterSessionID: voterSessionID,
		IsNew:          isNew,
	})
}

// GetMySessions handles GET /voters/my-sessions
// Lists every session this voter identity has joined, newest first.
func (h *VoterHandler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	voterSessionID := r.Header.Get("X-Voter-Session-ID")
	if voterSessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Voter-Session-ID header is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT s.id, s.name, s.status, s.voter_key, vr.display_name, vr.created_at,
		       (SELECT COUNT(*) FROM vote v
		        WHERE v.session_id = s.id AND v.voter_session_id = vr.voter_session_id)
		FROM voter_registration vr
		JOIN review_session s ON vr.session_id = s.id
		WHERE vr.voter_session_id = $1
		ORDER BY vr.created_at DESC
	`, voterSessionID)
	if err != nil {
		slog.Error("failed to query voter sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	sessions := []models.VoterSessionSummary{}
	for rows.Next() {
		var s models.VoterSessionSummary
		err := rows.Scan(&s.SessionID, &s.Name, &s.Status, &s.VoterKey, &s.DisplayName, &s.LinkedAt, &s.VoteCount)
		if err != nil {
			slog.Error("failed to scan voter session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		sessions = append(sessions, s)
	}

	middleware.JSONResponse(w, http.StatusOK, models.MySessionsResponse{Sessions: sessions})
}
