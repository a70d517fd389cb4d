// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/quickpoll/quickpoll/auth"
	"github.com/quickpoll/quickpoll/bridge"
	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/metrics"
	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/store"
)

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		StoreType:    cliparse.StoreMemory,
		IdentitySalt: "test-identity-salt",
	}
}

var (
	metricsOnce sync.Once
	testMetrics *metrics.VoteMetrics
)

// Metrics returns a process-wide metrics instance. promauto registers
// with the default registry, so tests must share one.
func Metrics() *metrics.VoteMetrics {
	metricsOnce.Do(func() {
		testMetrics = metrics.NewVoteMetrics("quickpoll_test")
	})
	return testMetrics
}

// Env bundles the wired-up components most handler tests need.
type Env struct {
	Repo    *store.MemoryStore
	Engine  *engine.Engine
	Bridge  *bridge.Bridge
	Metrics *metrics.VoteMetrics
	Cfg     cliparse.Config
}

// NewEnv builds a fresh memory-backed environment. The bridge is torn
// down with the test.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	repo := store.NewMemoryStore()
	cfg := GetTestConfig()
	m := Metrics()
	br := bridge.New(repo)
	t.Cleanup(br.Close)

	return &Env{
		Repo:    repo,
		Engine:  engine.New(repo, nil, m),
		Bridge:  br,
		Metrics: m,
		Cfg:     cfg,
	}
}

// CreateTestPoll stores a two-option poll and returns it. For quiz polls
// the record carries a generated host secret and starts unrevealed.
func CreateTestPoll(t *testing.T, repo store.Repository, quizMode bool, expiry string) *models.Poll {
	t.Helper()

	p := &models.Poll{
		ID:       auth.NewPollID(),
		Question: "Test question?",
		Options: []models.Option{
			{ID: "opt_1", Text: "Option A"},
			{ID: "opt_2", Text: "Option B"},
		},
		CreatedAt:       time.Now().UTC(),
		ExpiryDuration:  expiry,
		QuizMode:        quizMode,
		ResultsRevealed: !quizMode,
		Results:         map[string]int{"opt_1": 0, "opt_2": 0},
		VoterIdentities: []string{},
	}
	if quizMode {
		secret, err := auth.NewHostSecret()
		if err != nil {
			t.Fatalf("Failed to generate host secret: %v", err)
		}
		p.HostSecret = secret
	}

	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return p
}

// IdentityFor returns the voter identity the server would derive for a
// raw client IP under the test config.
func IdentityFor(ip string, cfg cliparse.Config) string {
	return auth.HashIP(ip, cfg.IdentitySalt)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Eventually polls cond until it returns true or the deadline passes.
func Eventually(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
