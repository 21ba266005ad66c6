// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session status constants
const (
	SessionDraft     = "draft"
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Content item status constants
const (
	ContentPending   = "pending"
	ContentVoting    = "voting"
	ContentCompleted = "completed"
)

// Score bounds for a single vote
const (
	MinScore = 0
	MaxScore = 10
)

// Request types

type CreateSessionRequest struct {
	Name string `json:"name"`
}

type UpdateSessionRequest struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

type ContentItemInput struct {
	Link        string  `json:"link"`
	CreatorName string  `json:"creator_name"`
	Title       *string `json:"title,omitempty"`
}

type CreateContentRequest struct {
	SessionID string             `json:"session_id"`
	Items     []ContentItemInput `json:"items"`
}

type UpdateContentRequest struct {
	Title       *string `json:"title,omitempty"`
	Link        *string `json:"link,omitempty"`
	CreatorName *string `json:"creator_name,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Score is a pointer so a missing field can be told apart from an explicit 0.
// Decoded as float64 and rejected unless it is an integer in [0,10].
type SubmitVoteRequest struct {
	ContentItemID  string   `json:"content_item_id"`
	SessionID      string   `json:"session_id"`
	Score          *float64 `json:"score"`
	VoterSessionID string   `json:"voter_session_id"`
}

type RegisterVoterRequest struct {
	VoterKey    string `json:"voter_key"`
	DisplayName string `json:"display_name,omitempty"`
}

// Response types

type CreateSessionResponse struct {
	Session     Session `json:"session"`
	DirectorKey string  `json:"director_key"`
	VoterKey    string  `json:"voter_key"`
}

type ContentListResponse struct {
	Items []ContentItem `json:"items"`
}

type VoteListResponse struct {
	Votes []Vote `json:"votes"`
}

type ScoreListResponse struct {
	Scores []EditorScore `json:"scores"`
}

type AdvanceResponse struct {
	Session     Session       `json:"session"`
	CurrentItem *ContentItem  `json:"current_item"`
	Completed   bool          `json:"completed"`
	Scores      []EditorScore `json:"scores,omitempty"`
}

type RegisterVoterResponse struct {
	VoterSessionID string `json:"voter_session_id"`
	IsNew          bool   `json:"is_new"`
}

type VoterSessionSummary struct {
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	VoterKey    string    `json:"voter_key"`
	DisplayName *string   `json:"display_name,omitempty"`
	LinkedAt    time.Time `json:"linked_at"`
	VoteCount   int       `json:"vote_count"`
}

type MySessionsResponse struct {
	Sessions []VoterSessionSummary `json:"sessions"`
}

// Domain types

type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DirectorKey string    `json:"director_key,omitempty"`
	VoterKey    string    `json:"voter_key"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ContentItem struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	Title            *string   `json:"title,omitempty"`
	Link             string    `json:"link"`
	CreatorName      string    `json:"creator_name"`
	OrderIndex       int       `json:"order_index"`
	CurrentVoteCount int       `json:"current_vote_count"`
	AverageScore     *float64  `json:"average_score"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type Vote struct {
	ID             string    `json:"id"`
	ContentItemID  string    `json:"content_item_id"`
	SessionID      string    `json:"session_id"`
	Score          int       `json:"score"`
	VoterSessionID string    `json:"voter_session_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type EditorScore struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	CreatorName       string    `json:"creator_name"`
	TotalContentCount int       `json:"total_content_count"`
	AverageScore      float64   `json:"average_score"`
	TotalVotes        int       `json:"total_votes"`
	CreatedAt         time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidSessionStatus reports whether s is a known session status.
func ValidSessionStatus(s string) bool {
	switch s {
	case SessionDraft, SessionActive, SessionCompleted:
		return true
	}
	return false
}

// ValidContentStatus reports whether s is a known content item status.
func ValidContentStatus(s string) bool {
	switch s {
	case ContentPending, ContentVoting, ContentCompleted:
		return true
	}
	return false
}
