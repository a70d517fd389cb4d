// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the QuickPoll API.

# Handler Types

Each handler is a struct with its dependencies injected:

  - PollHandler: creation, reads, and the quiz-mode reveal
  - VotingHandler: vote casting through the engine
  - StreamHandler: live results over SSE and WebSocket

# Poll Flow

	POST /api/polls              → CreatePoll (returns id, host_secret for quiz polls)
	GET  /api/polls/{id}         → GetPoll (visibility-filtered view)
	POST /api/polls/{id}/vote    → CastVote (identity derived from client address)
	POST /api/polls/{id}/reveal  → Reveal (quiz host only)
	GET  /api/polls/{id}/live    → Live (SSE snapshots + keep-alives)
	GET  /api/polls/{id}/ws      → LiveWS (WebSocket variant)

The host secret travels in the X-Host-Secret header, or the "secret"
query parameter for EventSource clients.

# Outcome Mapping

Vote outcomes map to: counted and already_voted → 200 (the latter is an
idempotent no-op, expected under client retries), invalid option → 400,
expired → 403, unknown poll → 404, store trouble → 503.

# Streams

A stream captures the caller's host/participant status once, at open
time. Every emitted snapshot goes through the same visibility filter and
expiry evaluation as the synchronous read path. Idle streams emit a
keep-alive every 30 seconds.
*/
package handlers
