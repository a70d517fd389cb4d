// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/quickpoll/quickpoll/bridge"
	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/metrics"
	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/store"
)

// DefaultKeepAlive is the idle window before a stream emits a keep-alive
// frame so proxies don't cut a quiet poll's connection.
const DefaultKeepAlive = 30 * time.Second

type StreamHandler struct {
	repo    store.Repository
	bridge  *bridge.Bridge
	metrics *metrics.VoteMetrics
	cfg     cliparse.Config

	keepAlive time.Duration // shortened in tests
}

func NewStreamHandler(repo store.Repository, br *bridge.Bridge, m *metrics.VoteMetrics, cfg cliparse.Config) *StreamHandler {
	return &StreamHandler{
		repo:      repo,
		bridge:    br,
		metrics:   m,
		cfg:       cfg,
		keepAlive: DefaultKeepAlive,
	}
}

// view filters a snapshot for one stream's caller. Host status was
// decided when the stream opened and is deliberately not re-derived
// per message.
func (h *StreamHandler) view(p *models.Poll, isHost bool, identity string) models.PollView {
	v := engine.FilterForCaller(p, isHost, time.Now())
	v.UserAlreadyVoted = p.HasVoter(identity)
	return v
}

// Live handles GET /api/polls/{id}/live as a Server-Sent Events stream.
// The client receives the current snapshot immediately, then a filtered
// snapshot after every committed change, coalesced to the latest state.
func (h *StreamHandler) Live(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		http.Error(w, "poll id is required", http.StatusBadRequest)
		return
	}

	poll, err := h.repo.Get(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "poll not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load poll for stream", "poll_id", pollID, "error", err)
		http.Error(w, "store error", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Captured once for the life of the stream.
	isHost := engine.IsHost(poll, hostSecret(r))
	identity := voterIdentity(r, h.cfg)

	l, err := h.bridge.Listen(pollID)
	if err != nil {
		http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer l.Close()

	h.metrics.StreamClients.Inc()
	defer h.metrics.StreamClients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	slog.Info("stream opened", "poll_id", pollID, "host", isHost)

	// Initial snapshot so the client is not blind until the first vote.
	if err := writeSSE(w, h.view(poll, isHost, identity)); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		next, fresh, err := l.Next(ctx, h.keepAlive)
		if err != nil {
			// Client disconnected or server shutting down.
			slog.Info("stream closed", "poll_id", pollID)
			return
		}
		if !fresh {
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
			continue
		}
		if err := writeSSE(w, h.view(next, isHost, identity)); err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, v models.PollView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}

// LiveWS handles GET /api/polls/{id}/ws, the WebSocket flavor of Live.
func (h *StreamHandler) LiveWS(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		http.Error(w, "poll id is required", http.StatusBadRequest)
		return
	}

	poll, err := h.repo.Get(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "poll not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load poll for stream", "poll_id", pollID, "error", err)
		http.Error(w, "store error", http.StatusServiceUnavailable)
		return
	}

	isHost := engine.IsHost(poll, hostSecret(r))
	identity := voterIdentity(r, h.cfg)

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "poll_id", pollID, "error", err)
		return
	}
	defer c.CloseNow()

	l, err := h.bridge.Listen(pollID)
	if err != nil {
		c.Close(websocket.StatusTryAgainLater, "stream unavailable")
		return
	}
	defer l.Close()

	h.metrics.StreamClients.Inc()
	defer h.metrics.StreamClients.Dec()

	// We never expect inbound messages; CloseRead gives us a context
	// that ends as soon as the peer goes away.
	ctx := c.CloseRead(r.Context())

	send := func(p *models.Poll) error {
		b, err := json.Marshal(h.view(p, isHost, identity))
		if err != nil {
			return err
		}
		return c.Write(ctx, websocket.MessageText, b)
	}

	if err := send(poll); err != nil {
		return
	}

	for {
		next, fresh, err := l.Next(ctx, h.keepAlive)
		if err != nil {
			c.Close(websocket.StatusNormalClosure, "")
			return
		}
		if !fresh {
			pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
			continue
		}
		if err := send(next); err != nil {
			return
		}
	}
}
