// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and request/response helpers.

# Middleware

  - WithLogging: logs request start/completion with duration
  - CORS: allows cross-origin requests and handles preflight

# Helpers

  - JSONResponse: writes JSON with status code
  - ErrorResponse: writes a standard error JSON body
  - ParseJSONBody: decodes a JSON request body
  - GetClientIP: extracts the caller address used for vote deduplication
    (Fly-Client-IP, then first X-Forwarded-For hop, then RemoteAddr)
*/
package middleware
