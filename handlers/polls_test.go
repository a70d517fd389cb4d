// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickpoll/quickpoll/auth"
	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/testutil"
)

func TestCreatePoll(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)

	tests := []struct {
		name         string
		request      models.CreatePollRequest
		expectedCode int
	}{
		{
			name: "valid open poll",
			request: models.CreatePollRequest{
				Question: "What should we order?",
				Options:  []string{"Pizza", "Sushi", "Tacos"},
				Expiry:   "never",
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "valid quiz poll",
			request: models.CreatePollRequest{
				Question: "Capital of France?",
				Options:  []string{"Paris", "Lyon"},
				QuizMode: true,
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "question too short",
			request: models.CreatePollRequest{
				Question: "Hi",
				Options:  []string{"A", "B"},
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "question too long",
			request: models.CreatePollRequest{
				Question: strings.Repeat("x", 201),
				Options:  []string{"A", "B"},
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "too few options",
			request: models.CreatePollRequest{
				Question: "Only one choice?",
				Options:  []string{"A"},
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "too many options",
			request: models.CreatePollRequest{
				Question: "Too many choices?",
				Options:  []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "empty option text",
			request: models.CreatePollRequest{
				Question: "Blank option?",
				Options:  []string{"A", ""},
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/polls", tt.request, nil)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedCode)
			if tt.expectedCode != http.StatusCreated {
				return
			}

			var resp models.CreatePollResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.ID) != auth.PollIDLen {
				t.Errorf("Expected %d-char poll id, got %q", auth.PollIDLen, resp.ID)
			}
			if tt.request.QuizMode && resp.HostSecret == "" {
				t.Error("Expected host secret for quiz poll")
			}
			if !tt.request.QuizMode && resp.HostSecret != "" {
				t.Error("Open poll should not get a host secret")
			}

			// The stored record: positional option ids, zeroed tallies.
			stored, err := env.Repo.Get(context.Background(), resp.ID)
			if err != nil {
				t.Fatalf("Stored poll missing: %v", err)
			}
			for i, opt := range stored.Options {
				wantID := "opt_" + string(rune('1'+i))
				if opt.ID != wantID {
					t.Errorf("Option %d has id %q, want %q", i, opt.ID, wantID)
				}
				if stored.Results[opt.ID] != 0 {
					t.Errorf("Option %q starts with tally %d", opt.ID, stored.Results[opt.ID])
				}
			}
			if stored.ResultsRevealed == tt.request.QuizMode {
				t.Errorf("ResultsRevealed = %v for quiz_mode = %v", stored.ResultsRevealed, tt.request.QuizMode)
			}
		})
	}
}

func TestCreatePollInvalidJSON(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)

	req := httptest.NewRequest("POST", "/api/polls", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetPoll(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	req := testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, nil)
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)

	if view.ID != poll.ID || view.Question != poll.Question {
		t.Errorf("View mismatch: %+v", view)
	}
	if view.UserAlreadyVoted {
		t.Error("Fresh caller should not be marked as voted")
	}
	if view.IsExpired {
		t.Error("Never-expiring poll marked expired")
	}
}

func TestGetPollNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)

	req := testutil.MakeRequest("GET", "/api/polls/missing1", nil, nil)
	req.SetPathValue("id", "missing1")
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetPollMasksUnrevealedQuizResults(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, true, "never")

	// Record real votes directly.
	err := env.Repo.TxUpdate(context.Background(), poll.ID, func(p *models.Poll) (bool, error) {
		p.Results["opt_1"] = 5
		p.Results["opt_2"] = 3
		return true, nil
	})
	if err != nil {
		t.Fatalf("Failed to seed votes: %v", err)
	}

	// Participant sees zeros.
	req := testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, nil)
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.Results["opt_1"] != 0 || view.Results["opt_2"] != 0 {
		t.Errorf("Participant sees unmasked results: %v", view.Results)
	}

	// Host sees true counts.
	req = testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, map[string]string{
		"X-Host-Secret": poll.HostSecret,
	})
	req.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &view)
	if view.Results["opt_1"] != 5 || view.Results["opt_2"] != 3 {
		t.Errorf("Host sees masked results: %v", view.Results)
	}
}

func TestGetPollSecretViaQueryParam(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, true, "never")

	err := env.Repo.TxUpdate(context.Background(), poll.ID, func(p *models.Poll) (bool, error) {
		p.Results["opt_1"] = 4
		return true, nil
	})
	if err != nil {
		t.Fatalf("Failed to seed votes: %v", err)
	}

	req := testutil.MakeRequest("GET", "/api/polls/"+poll.ID+"?secret="+poll.HostSecret, nil, nil)
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.Results["opt_1"] != 4 {
		t.Errorf("Query-param secret not honored: %v", view.Results)
	}
}

func TestGetPollReportsUserAlreadyVoted(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	identity := testutil.IdentityFor("203.0.113.7", env.Cfg)
	err := env.Repo.TxUpdate(context.Background(), poll.ID, func(p *models.Poll) (bool, error) {
		p.Results["opt_1"]++
		p.VoterIdentities = append(p.VoterIdentities, identity)
		return true, nil
	})
	if err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}

	req := testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, map[string]string{
		"X-Forwarded-For": "203.0.113.7",
	})
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.GetPoll(w, req)

	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if !view.UserAlreadyVoted {
		t.Error("Expected user_already_voted for the voter's own IP")
	}

	// A different caller is not marked.
	req = testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, map[string]string{
		"X-Forwarded-For": "203.0.113.8",
	})
	req.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)

	testutil.AssertJSON(t, w, &view)
	if view.UserAlreadyVoted {
		t.Error("Different caller marked as voted")
	}
}

func TestReveal(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, true, "never")

	tests := []struct {
		name         string
		pollID       string
		secret       string
		expectedCode int
	}{
		{"wrong secret", poll.ID, "nope", http.StatusForbidden},
		{"missing secret", poll.ID, "", http.StatusForbidden},
		{"unknown poll", "missing1", poll.HostSecret, http.StatusNotFound},
		{"correct secret", poll.ID, poll.HostSecret, http.StatusOK},
		{"repeat reveal is idempotent", poll.ID, poll.HostSecret, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.secret != "" {
				headers["X-Host-Secret"] = tt.secret
			}
			req := testutil.MakeRequest("POST", "/api/polls/"+tt.pollID+"/reveal", nil, headers)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.Reveal(w, req)

			testutil.AssertStatus(t, w, tt.expectedCode)
			if tt.expectedCode == http.StatusOK {
				var resp models.RevealResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.ResultsRevealed {
					t.Error("Expected results_revealed true")
				}
			}
		})
	}

	stored, _ := env.Repo.Get(context.Background(), poll.ID)
	if !stored.ResultsRevealed {
		t.Error("Reveal did not persist")
	}
}

func TestRevealOnOpenPollForbidden(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewPollHandler(env.Repo, env.Cfg)
	poll := testutil.CreateTestPoll(t, env.Repo, false, "never")

	// An open poll has no host; no secret can reveal it.
	req := testutil.MakeRequest("POST", "/api/polls/"+poll.ID+"/reveal", nil, map[string]string{
		"X-Host-Secret": "anything",
	})
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.Reveal(w, req)

	testutil.AssertStatus(t, w, http.StatusForbidden)
}
