// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sync"

	"github.com/quickpoll/quickpoll/models"
)

// notifier is the in-process change-notification fan-out used by the
// memory and SQL backends. Firestore and Redis get notifications from
// the datastore itself (snapshot listeners, pub/sub).
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func(*models.Poll)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]func(*models.Poll))}
}

func (n *notifier) subscribe(pollID string, fn func(*models.Poll)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	set := n.subs[pollID]
	if set == nil {
		set = make(map[int]func(*models.Poll))
		n.subs[pollID] = set
	}
	id := n.next
	n.next++
	set[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if set, ok := n.subs[pollID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(n.subs, pollID)
			}
		}
	}
}

// publish delivers a committed record to every subscriber of its poll.
// Each subscriber gets its own copy. Called after the store's own lock
// is released; callbacks are expected not to block.
func (n *notifier) publish(p *models.Poll) {
	n.mu.Lock()
	fns := make([]func(*models.Poll), 0, len(n.subs[p.ID]))
	for _, fn := range n.subs[p.ID] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(p.Clone())
	}
}

func (n *notifier) count(pollID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[pollID])
}
