// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Screenroom API.

# Route Registration

NewRouter creates a configured handler with all endpoints, wrapped in
CORS middleware:

	handler := router.NewRouter(db, cfg, hub)

# Endpoints

Health:

	GET /health

Session management (mutations require X-Director-Key):

	POST  /sessions              - Create session
	GET   /sessions              - Lookup by id, director_key, or voter_key
	GET   /sessions/{id}         - Get session
	PATCH /sessions/{id}         - Update name/status
	POST  /sessions/{id}/advance - Step the session forward

Content items (mutations require X-Director-Key):

	POST  /content      - Add a batch of items
	GET   /content      - List a session's items
	GET   /content/{id} - Get one item
	PATCH /content/{id} - Edit an item

Voting (public, uses a client voter identity):

	POST /votes - Submit or replace a vote
	GET  /votes - List votes for a session or item

Editor scores:

	GET /scores - Per-creator aggregate (snapshotted once)

Voter registry (requires X-Voter-Session-ID):

	POST /voters/register    - Link voter identity to a session
	GET  /voters/my-sessions - List joined sessions

Live updates:

	GET /events - Server-sent event stream for one session

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(db, cfg, hub)
	contentHandler := handlers.NewContentHandler(db, cfg, hub)
	voteHandler := handlers.NewVoteHandler(db, cfg, hub)
	scoreHandler := handlers.NewScoreHandler(db, cfg, hub)
	voterHandler := handlers.NewVoterHandler(db, cfg, hub)
	eventsHandler := handlers.NewEventsHandler(db, cfg, hub)

All handlers receive the database connection, configuration, and the
shared event hub.
*/
package router
