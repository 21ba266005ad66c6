// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/screenroom/auth"
	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/db"
	"github.com/danielhkuo/screenroom/models"
)

// SetupTestDB creates a fresh SQLite database in a per-test temp
// directory with the full schema. The file is removed with the temp
// dir when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.Config{
		DatabaseType: "sqlite",
		DatabaseURL:  filepath.Join(t.TempDir(), "screenroom_test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "test.db",
		DatabaseType: "sqlite",
	}
}

// CreateTestSession creates a session in the database and returns it
// with both capability keys populated.
// status should be "draft", "active", or "completed"
func CreateTestSession(t *testing.T, database *sql.DB, status string) models.Session {
	t.Helper()

	directorKey, _ := auth.GenerateKey()
	voterKey, _ := auth.GenerateKey()
	session := models.Session{
		ID:          uuid.NewString(),
		Name:        "Test Session",
		DirectorKey: directorKey,
		VoterKey:    voterKey,
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := database.Exec(`
		INSERT INTO review_session (id, name, director_key, voter_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, session.ID, session.Name, session.DirectorKey, session.VoterKey,
		session.Status, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session
}

// AddTestContent adds a content item to a session and returns its ID
func AddTestContent(t *testing.T, database *sql.DB, sessionID, creatorName string, orderIndex int, status string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := database.Exec(`
		INSERT INTO content_item (id, session_id, title, link, creator_name, order_index, current_vote_count, average_score, status, created_at)
		VALUES ($1, $2, NULL, $3, $4, $5, 0, NULL, $6, $7)
	`, id, sessionID, "https://example.com/watch/"+id, creatorName, orderIndex, status, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test content item: %v", err)
	}

	return id
}

// SubmitTestVote inserts a vote row and refreshes the item's
// aggregate, mirroring what the vote handler persists.
func SubmitTestVote(t *testing.T, database *sql.DB, contentItemID, sessionID, voterSessionID string, score int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := database.Exec(`
		INSERT INTO vote (id, content_item_id, session_id, score, voter_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, contentItemID, sessionID, score, voterSessionID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	_, err = database.Exec(`
		UPDATE content_item
		SET current_vote_count = (SELECT COUNT(*) FROM vote WHERE content_item_id = $1),
		    average_score = (SELECT ROUND(AVG(score) * 100) / 100.0 FROM vote WHERE content_item_id = $1)
		WHERE id = $1
	`, contentItemID)
	if err != nil {
		t.Fatalf("Failed to refresh content aggregate: %v", err)
	}

	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
