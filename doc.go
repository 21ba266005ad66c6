// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Screenroom API server.

Screenroom is a live content-review service: a director queues content
links, steps through them one at a time, and a room of voters scores
each on a 0-10 scale. Per-item averages roll up into per-creator editor
scores when the session completes.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=screenroom.db go run main.go

Or with flags:

	go run main.go -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (file path for sqlite)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, content, votes, scores, voters, events)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Capability key generation and validation
  - events: In-process hub behind the server-sent event streams
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
