// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/middleware"
	"github.com/quickpoll/quickpoll/models"
)

type VotingHandler struct {
	engine *engine.Engine
	cfg    cliparse.Config
}

func NewVotingHandler(eng *engine.Engine, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{engine: eng, cfg: cfg}
}

// CastVote handles POST /api/polls/{id}/vote
//
// The voter identity is implicit, derived from the client address. A
// repeat vote from the same identity is a 200 with outcome
// "already_voted": expected under client retries, so never an error.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	identity := voterIdentity(r, h.cfg)

	outcome, err := h.engine.CastVote(r.Context(), pollID, req.OptionID, identity)
	if err != nil {
		slog.Error("vote failed", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Vote could not be processed, please retry")
		return
	}

	switch outcome {
	case engine.OutcomeCounted, engine.OutcomeAlreadyVoted:
		slog.Info("vote handled", "poll_id", pollID, "option_id", req.OptionID, "outcome", outcome.String())
		middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Outcome: outcome.String()})
	case engine.OutcomeInvalidOption:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option_id: "+req.OptionID)
	case engine.OutcomePollExpired:
		middleware.ErrorResponse(w, http.StatusForbidden, "Poll has expired")
	case engine.OutcomePollNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unexpected vote outcome")
	}
}
