// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: question, options, expiry, quiz_mode
  - VoteRequest: option_id

# Response Types

Types for JSON responses:

  - CreatePollResponse: id, host_secret (quiz polls only)
  - VoteResponse: outcome
  - RevealResponse: results_revealed
  - PollView: the visibility-filtered client view of a poll
  - ErrorResponse: error, message

# Domain Types

Poll is the stored record: question, ordered options with positional
"opt_<n>" ids, UTC creation time, expiry duration string, quiz mode flag,
the host secret (present only for quiz polls), the reveal flag, a
results map keyed by option id, and the set of counted voter identities.

Poll is storage-shaped and carries secrets; it must never be written to a
client. PollView is the only client-facing shape.

# Constants

Validation bounds:

	MinQuestionLen = 3
	MaxQuestionLen = 200
	MinOptions     = 2
	MaxOptions     = 10

Expiry sentinel:

	ExpiryNever = "never"
*/
package models
