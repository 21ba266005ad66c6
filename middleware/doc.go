// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

  - WithLogging: logs request start/completion with method, path, duration
  - CORS: allows cross-origin requests, handles OPTIONS preflight

# Helpers

  - JSONResponse: writes a JSON response with status code
  - ErrorResponse: writes a JSON error body ({error, message})
  - ParseJSONBody: decodes a request body into a struct
  - GetClientIP: extracts client IP through proxies

# Usage

	mux.HandleFunc("POST /sessions", middleware.WithLogging(handler.CreateSession))

Every handler converts failures at its boundary into an ErrorResponse;
nothing is retried and internal detail stays in the server log.
*/
package middleware
