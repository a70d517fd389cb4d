// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickpoll/quickpoll/event"
	"github.com/quickpoll/quickpoll/metrics"
	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/store"
)

// Outcome classifies the result of a vote attempt.
type Outcome int

const (
	OutcomeCounted Outcome = iota
	OutcomeAlreadyVoted
	OutcomeInvalidOption
	OutcomePollNotFound
	OutcomePollExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCounted:
		return "counted"
	case OutcomeAlreadyVoted:
		return "already_voted"
	case OutcomeInvalidOption:
		return "invalid_option"
	case OutcomePollNotFound:
		return "not_found"
	case OutcomePollExpired:
		return "expired"
	}
	return "unknown"
}

// Engine owns the vote-casting rules. All mutation of a poll's results
// and voter set goes through CastVote, inside the repository's optimistic
// transaction, so concurrent votes on the same poll serialize in the
// store rather than behind an in-process lock.
type Engine struct {
	repo    store.Repository
	pub     event.Publisher
	metrics *metrics.VoteMetrics

	now func() time.Time // swapped in tests
}

func New(repo store.Repository, pub event.Publisher, m *metrics.VoteMetrics) *Engine {
	if pub == nil {
		pub = event.Nop()
	}
	return &Engine{repo: repo, pub: pub, metrics: m, now: time.Now}
}

// CastVote applies one vote attempt. The update callback may run more
// than once if the store retries on conflict, so it derives everything
// from the record it is handed and nothing else. Expiry is checked inside
// the transaction: a vote racing the end of the window is decided by the
// same serialized step that would count it.
//
// A non-nil error means the store could not serve the attempt (unreachable,
// or conflict retries exhausted); the outcome is only meaningful when the
// error is nil.
func (e *Engine) CastVote(ctx context.Context, pollID, optionID, voterIdentity string) (Outcome, error) {
	var outcome Outcome
	err := e.repo.TxUpdate(ctx, pollID, func(p *models.Poll) (bool, error) {
		if IsExpired(p, e.now()) {
			outcome = OutcomePollExpired
			return false, nil
		}
		if p.HasVoter(voterIdentity) {
			outcome = OutcomeAlreadyVoted
			return false, nil
		}
		if _, ok := p.Results[optionID]; !ok {
			outcome = OutcomeInvalidOption
			return false, nil
		}
		// Both mutations commit together or not at all.
		p.Results[optionID]++
		p.VoterIdentities = append(p.VoterIdentities, voterIdentity)
		outcome = OutcomeCounted
		return true, nil
	})

	if errors.Is(err, store.ErrNotFound) {
		return OutcomePollNotFound, nil
	}
	if err != nil {
		return 0, fmt.Errorf("vote transaction: %w", err)
	}

	switch outcome {
	case OutcomeCounted:
		if e.metrics != nil {
			e.metrics.VotesCounted.WithLabelValues(pollID).Inc()
		}
		ev := event.Vote{
			PollID:        pollID,
			OptionID:      optionID,
			VoterIdentity: voterIdentity,
			Timestamp:     e.now().UTC(),
		}
		// Analytics only; a publish failure never fails the vote.
		if err := e.pub.Publish(ctx, ev); err != nil {
			slog.Warn("vote event publish failed", "poll_id", pollID, "error", err)
		}
	case OutcomeAlreadyVoted:
		if e.metrics != nil {
			e.metrics.VotesDuplicate.WithLabelValues(pollID).Inc()
		}
	}

	return outcome, nil
}
