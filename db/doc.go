// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Drivers

Open selects the driver from Config.DatabaseType:

  - "postgres": lib/pq against a hosted PostgreSQL
  - "sqlite": modernc.org/sqlite (pure Go, no cgo) for dev and tests

All SQL in the application is written in the portable subset both accept:
$N placeholders, ON CONFLICT upserts, RETURNING clauses, and explicit
timestamp values instead of server-side defaults.

# Schema

CreateSchema creates all tables with IF NOT EXISTS, so it is safe to run
on every startup:

	if err := db.CreateSchema(dbConn); err != nil {
		// ...
	}

# Tables

  - review_session: session metadata plus the two capability keys
  - content_item: ordered reviewable links with running vote aggregates
  - vote: one row per (content item, voter identity), enforced UNIQUE
  - editor_score: per-creator aggregate snapshot, written once per session
  - voter_registration: optional pseudo-identity bookkeeping

The UNIQUE (content_item_id, voter_session_id) constraint on vote makes
the re-vote path an atomic upsert rather than a racy check-then-insert.
*/
package db
