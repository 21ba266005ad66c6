// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Screenroom API.

# Handler Types

Each handler is a struct with database, config, and event-hub dependencies:

  - SessionHandler: Session lifecycle (create, lookup, update, advance)
  - ContentHandler: Content item batches, listing, and edits
  - VoteHandler: Vote submission and listing
  - ScoreHandler: Editor score snapshots
  - VoterHandler: Voter identity registration and session history
  - EventsHandler: Server-sent event streams

Handlers are created via constructor functions that accept *sql.DB,
Config, and *events.Hub:

	sessionHandler := handlers.NewSessionHandler(db, cfg, hub)

# Session Lifecycle

Sessions progress through three states: draft → active → completed

	POST /sessions              → CreateSession (returns director_key and voter_key)
	POST /content               → CreateContentBatch (queues items for review)
	POST /sessions/{id}/advance → Advance (close current item, open the next)

Director operations require the X-Director-Key header. The final
advance, once no pending items remain, completes the session and
snapshots per-creator editor scores.

# Voting Flow

Voters look up the session by its voter key, then score the item
currently open for voting:

	GET  /sessions?voter_key=... → session (director key withheld)
	POST /votes                  → SubmitVote (create or replace)

A voter identity is a client-generated value carried in the
X-Voter-Session-ID header; one vote per identity per item, enforced by
a unique constraint so a resubmission replaces the earlier score.

# Score Aggregation

Editor scores are computed in scores.go:

	scores, computed, err := ComputeOrFetchEditorScores(db, sessionID)

For each creator this averages the per-item averages of their completed
items, counting items and votes. The first computation is persisted;
later calls return the stored snapshot unchanged. The function accepts
*sql.DB or *sql.Tx so session progression can snapshot scores inside
its own transaction.

# Live Updates

Every mutation publishes to the event hub; /events streams the
session's changes as server-sent events.
*/
package handlers
