// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/middleware"
	"github.com/danielhkuo/screenroom/models"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so score computation can run standalone or inside the session
// progression transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type ScoreHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *events.Hub
}

func NewScoreHandler(db *sql.DB, cfg cliparse.Config, hub *events.Hub) *ScoreHandler {
	return &ScoreHandler{db: db, cfg: cfg, hub: hub}
}

// round2 rounds half away from zero to two decimal places. Averages
// are stored already rounded, so repeated reads never drift.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const editorScoreColumns = `id, session_id, creator_name, total_content_count, average_score, total_votes, created_at`

func selectEditorScores(q dbtx, sessionID string) ([]models.EditorScore, error) {
	rows, err := q.Query(`
		SELECT `+editorScoreColumns+`
		FROM editor_score
		WHERE session_id = $1
		ORDER BY average_score DESC, creator_name ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []models.EditorScore{}
	for rows.Next() {
		var s models.EditorScore
		err := rows.Scan(
			&s.ID, &s.SessionID, &s.CreatorName, &s.TotalContentCount,
			&s.AverageScore, &s.TotalVotes, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ComputeOrFetchEditorScores returns the per-creator aggregate for a
// session. Existing rows are a snapshot and are returned untouched;
// otherwise the aggregate is computed over completed items and
// persisted. The second return reports whether a fresh computation
// happened.
func ComputeOrFetchEditorScores(q dbtx, sessionID string) ([]models.EditorScore, bool, error) {
	scores, err := selectEditorScores(q, sessionID)
	if err != nil {
		return nil, false, err
	}
	if len(scores) > 0 {
		return scores, false, nil
	}

	rows, err := q.Query(`
		SELECT creator_name, average_score, current_vote_count
		FROM content_item
		WHERE session_id = $1 AND status = $2
	`, sessionID, models.ContentCompleted)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	type creatorAgg struct {
		contentCount int
		totalVotes   int
		itemAverages []float64
	}
	byCreator := map[string]*creatorAgg{}
	for rows.Next() {
		var (
			creator   string
			avg       *float64
			voteCount int
		)
		if err := rows.Scan(&creator, &avg, &voteCount); err != nil {
			return nil, false, err
		}
		agg, ok := byCreator[creator]
		if !ok {
			agg = &creatorAgg{}
			byCreator[creator] = agg
		}
		agg.contentCount++
		agg.totalVotes += voteCount
		// Items nobody scored carry no average and are excluded
		// from the creator mean.
		if avg != nil {
			agg.itemAverages = append(agg.itemAverages, *avg)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	creators := make([]string, 0, len(byCreator))
	for creator := range byCreator {
		creators = append(creators, creator)
	}
	sort.Strings(creators)

	for _, creator := range creators {
		agg := byCreator[creator]
		average := 0.0
		if len(agg.itemAverages) > 0 {
			sum := 0.0
			for _, v := range agg.itemAverages {
				sum += v
			}
			average = round2(sum / float64(len(agg.itemAverages)))
		}
		_, err := q.Exec(`
			INSERT INTO editor_score (id, session_id, creator_name, total_content_count, average_score, total_votes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), sessionID, creator, agg.contentCount, average, agg.totalVotes, time.Now())
		if err != nil {
			return nil, false, err
		}
	}

	scores, err = selectEditorScores(q, sessionID)
	if err != nil {
		return nil, false, err
	}
	return scores, true, nil
}

// GetScores handles GET /scores?session_id=
func (h *ScoreHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	scores, computed, err := ComputeOrFetchEditorScores(h.db, sessionID)
	if err != nil {
		slog.Error("failed to compute editor scores", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute scores")
		return
	}

	if computed {
		slog.Info("editor scores computed", "session_id", sessionID, "creators", len(scores))
		h.hub.Publish(events.Event{
			Type:      events.ScoresReady,
			SessionID: sessionID,
			Data:      scores,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.ScoreListResponse{Scores: scores})
}
