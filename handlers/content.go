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

type ContentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewContentHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *ContentHandler {
	return &ContentHandler{db: db, cfg: cfg, hub: hub}
}

const contentColumns = `id, session_id, title, link, creator_name, order_index, current_vote_count, average_score, status, created_at`

func getContentItem(q dbtx, id string) (models.ContentItem, error) {
	var item models.ContentItem
	err := q.QueryRow(`
		SELECT `+contentColumns+`
		FROM content_item
		WHERE id = $1
	`, id).Scan(
		&item.ID, &item.SessionID, &item.Title, &item.Link, &item.CreatorName,
		&item.OrderIndex, &item.CurrentVoteCount, &item.AverageScore,
		&item.Status, &item.CreatedAt,
	)
	return item, err
}

// CreateContentBatch handles POST /content
// Items are appended after whatever already exists; order_index follows
// the array position within the batch.
func (h *ContentHandler) CreateContentBatch(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.SessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if len(req.Items) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	for _, item := range req.Items {
		if item.Link == "" || item.CreatorName == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "each item requires link and creator_name")
			return
		}
	}

	session, err := getSession(h.db, "id", req.SessionID)
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

	// Next free slot in the session's ordering
	var nextIndex int
	err = h.db.QueryRow(`
		SELECT COALESCE(MAX(order_index) + 1, 0)
		FROM content_item
		WHERE session_id = $1
	`, req.SessionID).Scan(&nextIndex)
	if err != nil {
		slog.Error("failed to query order index", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	items := make([]models.ContentItem, 0, len(req.Items))
	for i, input := range req.Items {
		item := models.ContentItem{
			ID:          uuid.NewString(),
			SessionID:   req.SessionID,
			Title:       input.Title,
			Link:        input.Link,
			CreatorName: input.CreatorName,
			OrderIndex:  nextIndex + i,
			Status:      models.ContentPending,
			CreatedAt:   time.Now(),
		}
		_, err = tx.Exec(`
			INSERT INTO content_item (id, session_id, title, link, creator_name, order_index, current_vote_count, average_score, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, 0, NULL, $7, $8)
		`, item.ID, item.SessionID, item.Title, item.Link, item.CreatorName,
			item.OrderIndex, item.Status, item.CreatedAt)
		if err != nil {
			slog.Error("failed to insert content item", "error", err, "link", item.Link)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create content")
			return
		}
		items = append(items, item)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit content batch", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create content")
		return
	}

	slog.Info("content batch created", "session_id", req.SessionID, "count", len(items))

	h.hub.Publish(events.Event{
		Type:      events.ContentUpdated,
		SessionID: req.SessionID,
		Data:      items,
	})

	middleware.JSONResponse(w, http.StatusCreated, models.ContentListResponse{Items: items})
}

// ListContent handles GET /content?session_id=&status=
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidContentStatus(status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: pending, voting, completed")
		return
	}

	query := `
		SELECT ` + contentColumns + `
		FROM content_item
		WHERE session_id = $1
	`
	args := []any{sessionID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY order_index ASC`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query content", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		var item models.ContentItem
		err := rows.Scan(
			&item.ID, &item.SessionID, &item.Title, &item.Link, &item.CreatorName,
			&item.OrderIndex, &item.CurrentVoteCount, &item.AverageScore,
			&item.Status, &item.CreatedAt,
		)
		if err != nil {
			slog.Error("failed to scan content item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		items = append(items, item)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ContentListResponse{Items: items})
}

// GetContentItem handles GET /content/{id}
func (h *ContentHandler) GetContentItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content id is required")
		return
	}

	item, err := getContentItem(h.db, id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Content item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query content item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, item)
}

// UpdateContent handles PATCH /content/{id}
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content id is required")
		return
	}

	var req models.UpdateContentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	item, err := getContentItem(h.db, id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Content item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query content item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	session, err := getSession(h.db, "id", item.SessionID)
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.ValidateKey(r.Header.Get("X-Director-Key"), session.DirectorKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid director key")
		return
	}

	if req.Title != nil {
		item.Title = req.Title
	}
	if req.Link != nil {
		if *req.Link == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "link cannot be empty")
			return
		}
		item.Link = *req.Link
	}
	if req.CreatorName != nil {
		if *req.CreatorName == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "creator_name cannot be empty")
			return
		}
		item.CreatorName = *req.CreatorName
	}
	if req.Status != nil {
		if !models.ValidContentStatus(*req.Status) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: pending, voting, completed")
			return
		}
		item.Status = *req.Status
	}

	_, err = h.db.Exec(`
		UPDATE content_item
		SET title = $1, link = $2, creator_name = $3, status = $4
		WHERE id = $5
	`, item.Title, item.Link, item.CreatorName, item.Status, item.ID)

	if err != nil {
		slog.Error("failed to update content item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update content")
		return
	}

	slog.Info("content item updated", "content_id", item.ID, "status", item.Status)

	h.hub.Publish(events.Event{
		Type:      events.ContentUpdated,
		SessionID: item.SessionID,
		Data:      item,
	})

	middleware.JSONResponse(w, http.StatusOK, item)
}
