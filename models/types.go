// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Validation bounds for poll creation
const (
	MinQuestionLen = 3
	MaxQuestionLen = 200
	MinOptions     = 2
	MaxOptions     = 10
)

// ExpiryNever disables the voting window for a poll.
const ExpiryNever = "never"

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Expiry   string   `json:"expiry"`
	QuizMode bool     `json:"quiz_mode"`
}

type VoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	ID         string `json:"id"`
	HostSecret string `json:"host_secret,omitempty"`
}

type VoteResponse struct {
	Outcome string `json:"outcome"`
}

type RevealResponse struct {
	ResultsRevealed bool `json:"results_revealed"`
}

// Domain types

type Option struct {
	ID   string `json:"id" firestore:"id"`
	Text string `json:"text" firestore:"text"`
}

// Poll is the stored record for one poll. It is only ever exposed to
// clients through a PollView; handlers must never serialize it directly
// because HostSecret and VoterIdentities are private to the server.
type Poll struct {
	ID              string         `json:"id" firestore:"id"`
	Question        string         `json:"question" firestore:"question"`
	Options         []Option       `json:"options" firestore:"options"`
	CreatedAt       time.Time      `json:"created_at" firestore:"created_at"`
	ExpiryDuration  string         `json:"expiry_duration" firestore:"expiry_duration"`
	QuizMode        bool           `json:"quiz_mode" firestore:"quiz_mode"`
	HostSecret      string         `json:"host_secret,omitempty" firestore:"host_secret,omitempty"`
	ResultsRevealed bool           `json:"results_revealed" firestore:"results_revealed"`
	Results         map[string]int `json:"results" firestore:"results"`
	VoterIdentities []string       `json:"voter_identities" firestore:"voter_identities"`

	// Version increases by one on every committed update. Change
	// notifications for overlapping commits can be delivered out of
	// order; consumers compare versions to drop stale snapshots.
	Version int64 `json:"version" firestore:"version"`
}

// HasVoter reports whether identity has already been counted on this poll.
func (p *Poll) HasVoter(identity string) bool {
	for _, v := range p.VoterIdentities {
		if v == identity {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record. Stores hand copies to
// transaction callbacks and change subscribers so a retried or aborted
// mutation never leaks into the canonical record.
func (p *Poll) Clone() *Poll {
	cp := *p
	cp.Options = make([]Option, len(p.Options))
	copy(cp.Options, p.Options)
	cp.Results = make(map[string]int, len(p.Results))
	for k, v := range p.Results {
		cp.Results[k] = v
	}
	cp.VoterIdentities = make([]string, len(p.VoterIdentities))
	copy(cp.VoterIdentities, p.VoterIdentities)
	return &cp
}

// PollView is the client-facing shape of a poll. Results are already
// visibility-filtered by the time a view is built.
type PollView struct {
	ID               string         `json:"id"`
	Question         string         `json:"question"`
	Options          []Option       `json:"options"`
	CreatedAt        time.Time      `json:"created_at"`
	IsExpired        bool           `json:"is_expired"`
	QuizMode         bool           `json:"quiz_mode"`
	ResultsRevealed  bool           `json:"results_revealed"`
	Results          map[string]int `json:"results"`
	UserAlreadyVoted bool           `json:"user_already_voted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
