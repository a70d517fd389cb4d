// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickpoll/quickpoll/bridge"
	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/handlers"
	"github.com/quickpoll/quickpoll/metrics"
	"github.com/quickpoll/quickpoll/middleware"
	"github.com/quickpoll/quickpoll/store"
)

func NewRouter(repo store.Repository, eng *engine.Engine, br *bridge.Bridge, m *metrics.VoteMetrics, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(repo, cfg)
	votingHandler := handlers.NewVotingHandler(eng, cfg)
	streamHandler := handlers.NewStreamHandler(repo, br, m, cfg)

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Poll lifecycle
	mux.HandleFunc("POST /api/polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /api/polls/{id}/reveal", middleware.WithLogging(pollHandler.Reveal))

	// Voting
	mux.HandleFunc("POST /api/polls/{id}/vote", middleware.WithLogging(votingHandler.CastVote))

	// Live results; no logging wrapper, these connections are long-lived
	mux.HandleFunc("GET /api/polls/{id}/live", streamHandler.Live)
	mux.HandleFunc("GET /api/polls/{id}/ws", streamHandler.LiveWS)

	// Prometheus
	mux.Handle("GET /metrics", promhttp.Handler())

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickpoll API v1"))
	})

	// CORS wraps everything so browser clients on other origins can
	// reach the API, preflights included.
	return middleware.CORS(mux)
}
