// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"

	"github.com/quickpoll/quickpoll/models"
)

// MemoryStore is the default backend for development and tests. The
// store mutex is held across the whole read-modify-write, which makes
// TxUpdate trivially serializable per poll (and across polls, which is
// stronger than the contract requires but harmless at this scale).
type MemoryStore struct {
	mu     sync.Mutex
	polls  map[string]*models.Poll
	notify *notifier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls:  make(map[string]*models.Poll),
		notify: newNotifier(),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Create(ctx context.Context, p *models.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.polls[p.ID]; exists {
		return ErrExists
	}
	s.polls[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) TxUpdate(ctx context.Context, id string, fn UpdateFn) error {
	s.mu.Lock()
	p, ok := s.polls[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}

	cp := p.Clone()
	changed, err := fn(cp)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}

	// Stamped under the lock, so versions follow commit order even
	// though notification delivery below may race.
	cp.Version++
	s.polls[id] = cp
	committed := cp.Clone()
	s.mu.Unlock()

	// Notify outside the lock; subscribers may call back into the store.
	s.notify.publish(committed)
	return nil
}

func (s *MemoryStore) Subscribe(pollID string, onChange func(*models.Poll)) (func(), error) {
	return s.notify.subscribe(pollID, onChange), nil
}

// Subscribers reports the number of active change subscriptions for a
// poll. Used by tests to verify listener cleanup.
func (s *MemoryStore) Subscribers(pollID string) int {
	return s.notify.count(pollID)
}

func (s *MemoryStore) Close() error { return nil }
