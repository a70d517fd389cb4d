// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/quickpoll/quickpoll/auth"
	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/middleware"
	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/store"
)

// createRetries bounds poll-id regeneration when a generated short id is
// already taken.
const createRetries = 3

type PollHandler struct {
	repo store.Repository
	cfg  cliparse.Config
}

func NewPollHandler(repo store.Repository, cfg cliparse.Config) *PollHandler {
	return &PollHandler{repo: repo, cfg: cfg}
}

// hostSecret pulls the presented host secret from the request. The query
// param exists for EventSource clients, which cannot set headers.
func hostSecret(r *http.Request) string {
	if s := r.Header.Get("X-Host-Secret"); s != "" {
		return s
	}
	return r.URL.Query().Get("secret")
}

// voterIdentity derives the deduplication key for the caller.
func voterIdentity(r *http.Request, cfg cliparse.Config) string {
	return auth.HashIP(middleware.GetClientIP(r), cfg.IdentitySalt)
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	qLen := utf8.RuneCountInString(req.Question)
	if qLen < models.MinQuestionLen || qLen > models.MaxQuestionLen {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("question must be %d-%d characters", models.MinQuestionLen, models.MaxQuestionLen))
		return
	}
	if len(req.Options) < models.MinOptions || len(req.Options) > models.MaxOptions {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("polls need %d-%d options", models.MinOptions, models.MaxOptions))
		return
	}
	for _, text := range req.Options {
		if text == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option text cannot be empty")
			return
		}
	}

	// Option ids are positional and immutable after creation.
	options := make([]models.Option, len(req.Options))
	results := make(map[string]int, len(req.Options))
	for i, text := range req.Options {
		id := fmt.Sprintf("opt_%d", i+1)
		options[i] = models.Option{ID: id, Text: text}
		results[id] = 0
	}

	poll := &models.Poll{
		Question:        req.Question,
		Options:         options,
		CreatedAt:       time.Now().UTC(),
		ExpiryDuration:  req.Expiry,
		QuizMode:        req.QuizMode,
		ResultsRevealed: !req.QuizMode, // non-quiz polls start revealed
		Results:         results,
		VoterIdentities: []string{},
	}

	if req.QuizMode {
		secret, err := auth.NewHostSecret()
		if err != nil {
			slog.Error("failed to generate host secret", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		poll.HostSecret = secret
	}

	// Short ids can collide; retry with a fresh one instead of
	// overwriting an existing poll.
	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		poll.ID = auth.NewPollID()
		err = h.repo.Create(r.Context(), poll)
		if !errors.Is(err, store.ErrExists) {
			break
		}
	}
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(options), "quiz_mode", poll.QuizMode)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		ID:         poll.ID,
		HostSecret: poll.HostSecret,
	})
}

// GetPoll handles GET /api/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := h.repo.Get(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Store error")
		return
	}

	isHost := engine.IsHost(poll, hostSecret(r))
	view := engine.FilterForCaller(poll, isHost, time.Now())
	view.UserAlreadyVoted = poll.HasVoter(voterIdentity(r, h.cfg))

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Reveal handles POST /api/polls/{id}/reveal
//
// Only the host of a quiz-mode poll may reveal; the flag is one-way and
// repeated reveals are an idempotent success.
func (h *PollHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	secret := hostSecret(r)
	var allowed bool
	err := h.repo.TxUpdate(r.Context(), pollID, func(p *models.Poll) (bool, error) {
		allowed = engine.IsHost(p, secret)
		if !allowed || p.ResultsRevealed {
			return false, nil
		}
		p.ResultsRevealed = true
		return true, nil
	})

	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to reveal poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Store error")
		return
	}
	if !allowed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid host secret")
		return
	}

	slog.Info("poll results revealed", "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, models.RevealResponse{ResultsRevealed: true})
}
