// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/screenroom/cliparse"
)

// Open connects to the configured database. DatabaseType selects the
// driver: "postgres" (lib/pq) for production, "sqlite" (modernc, pure Go)
// for development and tests.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	switch cfg.DatabaseType {
	case "postgres":
		return sql.Open("postgres", cfg.DatabaseURL)
	case "sqlite":
		conn, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; a single pooled connection
		// avoids SQLITE_BUSY under concurrent handlers.
		conn.SetMaxOpenConns(1)
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.DatabaseType)
	}
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to the subset both SQLite and Postgres accept: no
// server-side timestamp defaults (handlers insert explicit values).
const schema = `
-- Review sessions
CREATE TABLE IF NOT EXISTS review_session (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    director_key TEXT NOT NULL UNIQUE,
    voter_key TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'completed')),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_director_key ON review_session(director_key);
CREATE INDEX IF NOT EXISTS idx_session_voter_key ON review_session(voter_key);

-- Content items
CREATE TABLE IF NOT EXISTS content_item (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES review_session(id) ON DELETE CASCADE,
    title TEXT,
    link TEXT NOT NULL,
    creator_name TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    current_vote_count INTEGER NOT NULL DEFAULT 0,
    average_score REAL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'voting', 'completed')),
    created_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, order_index)
);

CREATE INDEX IF NOT EXISTS idx_content_session_id ON content_item(session_id);
CREATE INDEX IF NOT EXISTS idx_content_session_status ON content_item(session_id, status);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    content_item_id TEXT NOT NULL REFERENCES content_item(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL REFERENCES review_session(id) ON DELETE CASCADE,
    score INTEGER NOT NULL CHECK (score >= 0 AND score <= 10),
    voter_session_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (content_item_id, voter_session_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_content_item ON vote(content_item_id);
CREATE INDEX IF NOT EXISTS idx_vote_session ON vote(session_id);

-- Editor score snapshots
CREATE TABLE IF NOT EXISTS editor_score (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES review_session(id) ON DELETE CASCADE,
    creator_name TEXT NOT NULL,
    total_content_count INTEGER NOT NULL,
    average_score REAL NOT NULL,
    total_votes INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, creator_name)
);

CREATE INDEX IF NOT EXISTS idx_editor_score_session ON editor_score(session_id);

-- Voter registrations (client-generated pseudo-identities)
CREATE TABLE IF NOT EXISTS voter_registration (
    voter_session_id TEXT NOT NULL,
    session_id TEXT NOT NULL REFERENCES review_session(id) ON DELETE CASCADE,
    display_name TEXT,
    created_at TIMESTAMP NOT NULL,
    last_seen_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_session_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_registration_session ON voter_registration(session_id);
`
