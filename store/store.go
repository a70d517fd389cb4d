// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/quickpoll/quickpoll/models"
)

var (
	ErrNotFound = errors.New("poll not found")
	ErrExists   = errors.New("poll already exists")
	// ErrConflict means the optimistic transaction lost the race more
	// times than we are willing to retry. The client may retry the whole
	// request; nothing was committed.
	ErrConflict = errors.New("poll update conflict, retries exhausted")
)

// maxTxRetries bounds optimistic-update retries for backends that retry
// in our code (SQL, Redis). Firestore retries inside its own client.
const maxTxRetries = 5

// UpdateFn inspects the record it is handed and either mutates it in
// place, returning true to commit, or leaves it alone and returns false.
// The record is always a private copy; on a write conflict the store
// re-reads and calls the function again, so it must be a pure function
// of its argument.
type UpdateFn func(p *models.Poll) (changed bool, err error)

// Repository is the poll document store. One record per poll;
// serializable isolation per poll id on TxUpdate; change notifications
// carry the committed record.
type Repository interface {
	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Poll, error)

	// Create stores a new record, or returns ErrExists if the id is taken.
	Create(ctx context.Context, p *models.Poll) error

	// TxUpdate runs fn against the current record under optimistic
	// concurrency control, retrying on conflict. Returns ErrNotFound if
	// the poll does not exist and ErrConflict when retries run out.
	TxUpdate(ctx context.Context, id string, fn UpdateFn) error

	// Subscribe registers onChange to be called with the committed record
	// after every successful TxUpdate for the poll. The callback must not
	// block. When commits on a poll overlap, callbacks may run out of
	// commit order; the record's Version field carries the true order and
	// consumers must drop anything not newer than what they last took.
	// The returned function cancels the subscription; it is safe to call
	// once.
	Subscribe(pollID string, onChange func(*models.Poll)) (func(), error)

	Close() error
}
