// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"time"

	"github.com/quickpoll/quickpoll/auth"
	"github.com/quickpoll/quickpoll/models"
)

// IsHost reports whether a presented secret grants host rights on the
// poll. Only quiz-mode polls have a host; comparison is constant-time.
func IsHost(p *models.Poll, presentedSecret string) bool {
	return p.QuizMode && auth.SecretsEqual(presentedSecret, p.HostSecret)
}

// FilterForCaller builds the view of a poll a caller is permitted to see.
// For a quiz-mode poll whose results are not yet revealed, a non-host
// caller gets every count zeroed; the true counts stay untouched in
// storage. The same filter runs on the synchronous read path and on every
// snapshot the change bridge emits, so a participant can never observe
// true counts early on either path.
func FilterForCaller(p *models.Poll, isHost bool, now time.Time) models.PollView {
	view := models.PollView{
		ID:              p.ID,
		Question:        p.Question,
		Options:         append([]models.Option(nil), p.Options...),
		CreatedAt:       p.CreatedAt.UTC(),
		IsExpired:       IsExpired(p, now),
		QuizMode:        p.QuizMode,
		ResultsRevealed: p.ResultsRevealed,
		Results:         make(map[string]int, len(p.Results)),
	}

	masked := p.QuizMode && !p.ResultsRevealed && !isHost
	for id, count := range p.Results {
		if masked {
			view.Results[id] = 0
		} else {
			view.Results[id] = count
		}
	}
	return view
}
