// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/models"
	"github.com/danielhkuo/screenroom/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different voters don't corrupt the item aggregate or drop rows
func TestConcurrentVoteSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	voteHandler := NewVoteHandler(db, cfg, events.NewHub())

	session := testutil.CreateTestSession(t, db, models.SessionActive)
	itemID := testutil.AddTestContent(t, db, session.ID, "Alice", 0, models.ContentVoting)

	numVoters := 10

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			s := float64(voterIdx % 11)
			voteReq := models.SubmitVoteRequest{
				ContentItemID:  itemID,
				SessionID:      session.ID,
				Score:          &s,
				VoterSessionID: "concurrent-voter-" + strconv.Itoa(voterIdx),
			}
			body, _ := json.Marshal(voteReq)
			req := httptest.NewRequest("POST", "/votes", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			voteHandler.SubmitVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	// Exactly one row per voter, and the aggregate agrees with them
	var voteCount, scoreSum int
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(score), 0) FROM vote WHERE content_item_id = $1
	`, itemID).Scan(&voteCount, &scoreSum)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != numVoters {
		t.Errorf("Expected %d votes in database, got %d", numVoters, voteCount)
	}

	var storedCount int
	var storedAvg float64
	err = db.QueryRow(`
		SELECT current_vote_count, average_score FROM content_item WHERE id = $1
	`, itemID).Scan(&storedCount, &storedAvg)
	if err != nil {
		t.Fatalf("Failed to query aggregate: %v", err)
	}
	if storedCount != voteCount {
		t.Errorf("Aggregate count %d disagrees with %d vote rows", storedCount, voteCount)
	}
}

// TestConcurrentDuplicateVotes verifies that the same voter racing
// against themselves ends up with exactly one vote row
func TestConcurrentDuplicateVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	voteHandler := NewVoteHandler(db, cfg, events.NewHub())

	session := testutil.CreateTestSession(t, db, models.SessionActive)
	itemID := testutil.AddTestContent(t, db, session.ID, "Alice", 0, models.ContentVoting)

	attempts := 8
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			s := float64(attempt % 11)
			voteReq := models.SubmitVoteRequest{
				ContentItemID:  itemID,
				SessionID:      session.ID,
				Score:          &s,
				VoterSessionID: "racing-voter",
			}
			body, _ := json.Marshal(voteReq)
			req := httptest.NewRequest("POST", "/votes", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			voteHandler.SubmitVote(w, req)
		}(i)
	}
	wg.Wait()

	var voteCount int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE content_item_id = $1 AND voter_session_id = 'racing-voter'
	`, itemID).Scan(&voteCount)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("Expected exactly 1 vote row for the racing voter, got %d", voteCount)
	}

	var storedCount int
	err = db.QueryRow(`
		SELECT current_vote_count FROM content_item WHERE id = $1
	`, itemID).Scan(&storedCount)
	if err != nil {
		t.Fatalf("Failed to query aggregate: %v", err)
	}
	if storedCount != 1 {
		t.Errorf("Expected aggregate count 1, got %d", storedCount)
	}
}
