// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine holds the poll domain rules: expiry evaluation, results
visibility, and the vote transaction.

# Expiry

IsExpired is a pure function over (record, now). Expiry strings use a
numeric count plus a unit suffix ("30m", "2h", "7d"); "never" and
anything unparsable mean the poll never expires. Every caller evaluates
against its own wall clock, never a cached verdict.

# Visibility

FilterForCaller builds the PollView a caller may see. Quiz-mode polls
hide true counts (zeroed in the view) from non-hosts until the host
reveals results. The filter is applied on reads and on every live-stream
emission alike.

# Votes

Engine.CastVote runs the check-and-increment inside the repository's
optimistic transaction:

	outcome, err := eng.CastVote(ctx, pollID, optionID, identity)

Outcomes: counted, already_voted (an idempotent no-op, not an error),
invalid_option, not_found, expired. Two racing votes from distinct
identities both count; two from the same identity yield exactly one
counted. Counted votes bump Prometheus counters and, when configured,
emit an analytics event to Kafka.
*/
package engine
