// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/models"
	"github.com/danielhkuo/screenroom/testutil"
)

func TestCreateSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, events.NewHub())

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid session",
			body:       models.CreateSessionRequest{Name: "Friday Review"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       models.CreateSessionRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.body)
			}
			req := httptest.NewRequest("POST", "/sessions", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateSession(w, req)

			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusCreated {
				var resp models.CreateSessionResponse
				testutil.AssertJSON(t, w, &resp)

				if resp.Session.ID == "" {
					t.Error("Expected session id to be set")
				}
				if resp.DirectorKey == "" || resp.VoterKey == "" {
					t.Error("Expected both capability keys to be returned")
				}
				if resp.DirectorKey == resp.VoterKey {
					t.Error("Director and voter keys must differ")
				}
				if resp.Session.Status != models.SessionDraft {
					t.Errorf("Expected status draft, got %s", resp.Session.Status)
				}
			}
		})
	}
}

func TestGetSessionSelectors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, events.NewHub())

	session := testutil.CreateTestSession(t, db, models.SessionActive)

	tests := []struct {
		name            string
		query           string
		wantStatus      int
		wantDirectorKey bool
	}{
		{
			name:            "by id",
			query:           "?id=" + session.ID,
			wantStatus:      http.StatusOK,
			wantDirectorKey: true,
		},
		{
			name:            "by director key",
			query:           "?director_key=" + session.DirectorKey,
			wantStatus:      http.StatusOK,
			wantDirectorKey: true,
		},
		{
			name:            "by voter key hides director key",
			query:           "?voter_key=" + session.VoterKey,
			wantStatus:      http.StatusOK,
			wantDirectorKey: false,
		},
		{
			name:       "no selector",
			query:      "",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown id",
			query:      "?id=nonexistent",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown voter key",
			query:      "?voter_key=nonexistent",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sessions"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetSession(w, req)

			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var got models.Session
				testutil.AssertJSON(t, w, &got)

				if got.ID != session.ID {
					t.Errorf("Expected session %s, got %s", session.ID, got.ID)
				}
				if tt.wantDirectorKey && got.DirectorKey != session.DirectorKey {
					t.Error("Expected director key in response")
				}
				if !tt.wantDirectorKey && got.DirectorKey != "" {
					t.Error("Director key must not leak on voter key lookups")
				}
				if got.VoterKey != session.VoterKey {
					t.Error("Expected voter key in response")
				}
			}
		})
	}
}

func TestGetSessionSelectorPrecedence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, events.NewHub())

	first := testutil.CreateTestSession(t, db, models.SessionDraft)
	second := testutil.CreateTestSession(t, db, models.SessionDraft)

	// id wins over voter_key when both are supplied
	req := httptest.NewRequest("GET", "/sessions?id="+first.ID+"&voter_key="+second.VoterKey, nil)
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.Session
	testutil.AssertJSON(t, w, &got)
	if got.ID != first.ID {
		t.Errorf("Expected id selector to win, got session %s", got.ID)
	}
}

func TestGetSessionByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, events.NewHub())

	session := testutil.CreateTestSession(t, db, models.SessionDraft)

	req := httptest.NewRequest("GET", "/sessions/"+session.ID, nil)
	req.SetPathValue("id", session.ID)
	w := httptest.NewRecorder()
	handler.GetSessionByID(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	req = httptest.NewRequest("GET", "/sessions/nope", nil)
	req.SetPathValue("id", "nope")
	w = httptest.NewRecorder()
	handler.GetSessionByID(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUpdateSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, events.NewHub())

	session := testutil.CreateTestSession(t, db, models.SessionDraft)

	newName := "Renamed Review"
	activeStatus := models.SessionActive
	badStatus := "paused"

	tests := []struct {
		name        string
		sessionID   string
		directorKey string
		body        models.UpdateSessionRequest
		wantStatus  int
	}{
		{
			name:        "rename",
			sessionID:   session.ID,
			directorKey: session.DirectorKey,
			body:        models.UpdateSessionRequest{Name: &newName},
			wantStatus:  http.StatusOK,
		},
		{
			name:        "set status",
			sessionID:   session.ID,
			directorKey: session.DirectorKey,
			body:        models.UpdateSessionRequest{Status: &activeStatus},
			wantStatus:  http.StatusOK,
		},
		{
			name:        "invalid status",
			sessionID:   session.ID,
			directorKey: session.DirectorKey,
			body:        models.UpdateSessionRequest{Status: &badStatus},
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "wrong director key",
			sessionID:   session.ID,
			directorKey: "wrong-key",
			body:        models.UpdateSessionRequest{Name: &newName},
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "missing director key",
			sessionID:   session.ID,
			directorKey: "",
			body:        models.UpdateSessionRequest{Name: &newName},
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "unknown session",
			sessionID:   "nonexistent",
			directorKey: session.DirectorKey,
			body:        models.UpdateSessionRequest{Name: &newName},
			wantStatus:  http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("PATCH", "/sessions/"+tt.sessionID, bytes.NewReader(body))
			req.SetPathValue("id", tt.sessionID)
			req.Header.Set("Content-Type", "application/json")
			if tt.directorKey != "" {
				req.Header.Set("X-Director-Key", tt.directorKey)
			}
			w := httptest.NewRecorder()

			handler.UpdateSession(w, req)

			testutil.AssertStatus(t, w, tt.wantStatus)
		})
	}

	// Verify the rename and status change stuck
	var name, status string
	err := db.QueryRow(`SELECT name, status FROM review_session WHERE id = $1`, session.ID).Scan(&name, &status)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if name != newName {
		t.Errorf("Expected name %q, got %q", newName, name)
	}
	if status != models.SessionActive {
		t.Errorf("Expected status active, got %s", status)
	}
}
