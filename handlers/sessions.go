// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/screenroom/auth"
	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
	"github.com/danielhkuo/screenroom/models"
)

type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, hub: hub}
}

const sessionColumns = `id, name, director_key, voter_key, status, created_at, updated_at`

// getSession fetches one session by an equality match on a fixed column.
func getSession(q dbtx, where, arg string) (models.Session, error) {
	var s models.Session
	err := q.QueryRow(`
		SELECT `+sessionColumns+`
		FROM review_session
		WHERE `+where+` = $1
	`, arg).Scan(
		&s.ID, &s.Name, &s.DirectorKey, &s.VoterKey,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	// Generate the two capability keys. This is the only time the
	// director key leaves storage.
	directorKey, err := auth.GenerateKey()
	if err != nil {
		slog.Error("failed to generate director key", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	voterKey, err := auth.GenerateKey()
	if err != nil {
		slog.Error("failed to generate voter key", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	session := models.Session{
		ID:          uuid.NewString(),
		Name:        req.Name,
		DirectorKey: directorKey,
		VoterKey:    voterKey,
		Status:      models.SessionDraft,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO review_session (id, name, director_key, voter_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, session.ID, session.Name, session.DirectorKey, session.VoterKey,
		session.Status, session.CreatedAt, session.UpdatedAt)

	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", session.ID, "name", session.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		Session:     session,
		DirectorKey: directorKey,
		VoterKey:    voterKey,
	})
}

// GetSession handles GET /sessions?id=|director_key=|voter_key=
// Exactly one selector is honored, in that precedence order.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := query.Get("id")
	directorKey := query.Get("director_key")
	voterKey := query.Get("voter_key")

	var (
		where string
		arg   string
	)
	byVoterKey := false
	switch {
	case id != "":
		where, arg = "id", id
	case directorKey != "":
		where, arg = "director_key", directorKey
	case voterKey != "":
		where, arg = "voter_key", voterKey
		byVoterKey = true
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Must provide id, director_key, or voter_key")
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

	// A voter-key lookup must not disclose the director capability.
	if byVoterKey {
		session.DirectorKey = ""
	}

	middleware.JSONResponse(w, http.StatusOK, session)
}

// GetSessionByID handles GET /sessions/{id}
func (h *SessionHandler) GetSessionByID(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, session)
}

// UpdateSession handles PATCH /sessions/{id}
// Partial update of name/status. Last writer wins; there is no
// optimistic-concurrency check.
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.UpdateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
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

	// Mutating a session requires the director capability
	if err := auth.ValidateKey(r.Header.Get("X-Director-Key"), session.DirectorKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid director key")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		session.Name = *req.Name
	}
	if req.Status != nil {
		if !models.ValidSessionStatus(*req.Status) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: draft, active, completed")
			return
		}
		session.Status = *req.Status
	}
	session.UpdatedAt = time.Now()

	_, err = h.db.Exec(`
		UPDATE review_session
		SET name = $1, status = $2, updated_at = $3
		WHERE id = $4
	`, session.Name, session.Status, session.UpdatedAt, session.ID)

	if err != nil {
		slog.Error("failed to update session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update session")
		return
	}

	slog.Info("session updated", "session_id", session.ID, "status", session.Status)

	h.hub.Publish(events.Event{
		Type:      events.SessionUpdated,
		SessionID: session.ID,
		Data:      session,
	})

	middleware.JSONResponse(w, http.StatusOK, session)
}
