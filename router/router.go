// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/screenroom/cliparse"
	"github.com/danielhkuo/screenroom/events"
	"github.com/danielhkuo/screenroom/handlers"
	"github.com/danielhkuo/screenroom/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, hub *events.Hub) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db, cfg, hub)
	contentHandler := handlers.NewContentHandler(db, cfg, hub)
	voteHandler := handlers.NewVoteHandler(db, cfg, hub)
	scoreHandler := handlers.NewScoreHandler(db, cfg, hub)
	voterHandler := handlers.NewVoterHandler(db, cfg, hub)
	eventsHandler := handlers.NewEventsHandler(db, cfg, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session management
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSessionByID))
	mux.HandleFunc("PATCH /sessions/{id}", middleware.WithLogging(sessionHandler.UpdateSession))
	mux.HandleFunc("POST /sessions/{id}/advance", middleware.WithLogging(sessionHandler.Advance))

	// Content items
	mux.HandleFunc("POST /content", middleware.WithLogging(contentHandler.CreateContentBatch))
	mux.HandleFunc("GET /content", middleware.WithLogging(contentHandler.ListContent))
	mux.HandleFunc("GET /content/{id}", middleware.WithLogging(contentHandler.GetContentItem))
	mux.HandleFunc("PATCH /content/{id}", middleware.WithLogging(contentHandler.UpdateContent))

	// Voting
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /votes", middleware.WithLogging(voteHandler.ListVotes))

	// Editor scores
	mux.HandleFunc("GET /scores", middleware.WithLogging(scoreHandler.GetScores))

	// Voter registry
	mux.HandleFunc("POST /voters/register", middleware.WithLogging(voterHandler.Register))
	mux.HandleFunc("GET /voters/my-sessions", middleware.WithLogging(voterHandler.GetMySessions))

	// Live updates (logged at open/close by the handler itself;
	// WithLogging would report a bogus duration for a held-open stream)
	mux.HandleFunc("GET /events", eventsHandler.Stream)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("screenroom API v1"))
	})

	return middleware.CORS(mux)
}
