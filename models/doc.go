// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: name
  - UpdateSessionRequest: name, status (partial)
  - CreateContentRequest: session_id, items
  - UpdateContentRequest: title, link, creator_name, status (partial)
  - SubmitVoteRequest: content_item_id, session_id, score, voter_session_id
  - RegisterVoterRequest: voter_key, display_name

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session, director_key, voter_key
  - ContentListResponse: items
  - VoteListResponse: votes
  - ScoreListResponse: scores
  - AdvanceResponse: session, current_item, completed, scores
  - RegisterVoterResponse: voter_session_id, is_new
  - MySessionsResponse: sessions
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Session: review session metadata, capability keys, lifecycle state
  - ContentItem: one reviewable link with running vote aggregates
  - Vote: a single 0-10 score from a voter pseudo-identity
  - EditorScore: per-creator aggregate snapshot

# Constants

Session status values:

	SessionDraft     = "draft"
	SessionActive    = "active"
	SessionCompleted = "completed"

Content item status values:

	ContentPending   = "pending"
	ContentVoting    = "voting"
	ContentCompleted = "completed"

Vote score bounds:

	MinScore = 0
	MaxScore = 10
*/
package models
