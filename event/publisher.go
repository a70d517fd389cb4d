// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"time"
)

// Vote is the analytics event emitted for every counted vote.
type Vote struct {
	PollID        string    `json:"poll_id"`
	OptionID      string    `json:"option_id"`
	VoterIdentity string    `json:"voter_identity"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher sinks counted-vote events. Publishing is best-effort from
// the vote path's point of view; failures are logged, never surfaced to
// the voter.
type Publisher interface {
	Publish(ctx context.Context, v Vote) error
	Close() error
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, v Vote) error { return nil }
func (nopPublisher) Close() error                              { return nil }

// Nop returns a publisher that discards everything. Used when no Kafka
// brokers are configured.
func Nop() Publisher { return nopPublisher{} }
