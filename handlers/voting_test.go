// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/testutil"
)

func castVoteRequest(pollID, optionID, clientIP string) *http.Request {
	req := testutil.MakeRequest("POST", "/api/polls/"+pollID+"/vote",
		models.VoteRequest{OptionID: optionID},
		map[string]string{"X-Forwarded-For": clientIP})
	req.SetPathValue("id", pollID)
	return req
}

func TestCastVote(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Engine, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	req := castVoteRequest(poll.ID, "opt_1", "203.0.113.7")
	w := httptest.NewRecorder()
	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Outcome != "counted" {
		t.Errorf("Expected outcome counted, got %q", resp.Outcome)
	}

	stored, _ := env.Repo.Get(context.Background(), poll.ID)
	if stored.Results["opt_1"] != 1 {
		t.Errorf("Expected tally 1, got %d", stored.Results["opt_1"])
	}
}

func TestCastVoteDuplicateIsOK(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Engine, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	w := httptest.NewRecorder()
	handler.CastVote(w, castVoteRequest(poll.ID, "opt_1", "203.0.113.7"))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Same IP again: still a 200, outcome says already_voted.
	w = httptest.NewRecorder()
	handler.CastVote(w, castVoteRequest(poll.ID, "opt_2", "203.0.113.7"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Outcome != "already_voted" {
		t.Errorf("Expected outcome already_voted, got %q", resp.Outcome)
	}

	stored, _ := env.Repo.Get(context.Background(), poll.ID)
	if stored.Results["opt_1"] != 1 || stored.Results["opt_2"] != 0 {
		t.Errorf("Duplicate vote changed tallies: %v", stored.Results)
	}
}

func TestCastVoteErrors(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Engine, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")
	expired := testutil.CreateTestPoll(t, env.Repo, false, "1m")

	// Age the expired poll past its window.
	err := env.Repo.TxUpdate(context.Background(), expired.ID, func(p *models.Poll) (bool, error) {
		p.CreatedAt = p.CreatedAt.Add(-2 * time.Minute)
		return true, nil
	})
	if err != nil {
		t.Fatalf("Failed to age poll: %v", err)
	}

	tests := []struct {
		name         string
		pollID       string
		optionID     string
		expectedCode int
	}{
		{"invalid option", poll.ID, "opt_99", http.StatusBadRequest},
		{"unknown poll", "missing1", "opt_1", http.StatusNotFound},
		{"expired poll", expired.ID, "opt_1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.CastVote(w, castVoteRequest(tt.pollID, tt.optionID, "203.0.113.50"))
			testutil.AssertStatus(t, w, tt.expectedCode)
		})
	}
}

func TestCastVoteBadRequests(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Engine, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	// Malformed JSON
	req := httptest.NewRequest("POST", "/api/polls/"+poll.ID+"/vote", strings.NewReader("{bad"))
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.CastVote(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Missing option_id
	req = testutil.MakeRequest("POST", "/api/polls/"+poll.ID+"/vote", models.VoteRequest{}, nil)
	req.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	handler.CastVote(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVoteDistinctIdentities(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Engine, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		w := httptest.NewRecorder()
		handler.CastVote(w, castVoteRequest(poll.ID, "opt_2", ip))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	stored, _ := env.Repo.Get(context.Background(), poll.ID)
	if stored.Results["opt_2"] != 3 {
		t.Errorf("Expected tally 3, got %d", stored.Results["opt_2"])
	}
	if len(stored.VoterIdentities) != 3 {
		t.Errorf("Expected 3 identities, got %d", len(stored.VoterIdentities))
	}
}
