// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quickpoll/quickpoll/models"
)

// SQLStore keeps each poll as a single JSON document row with a version
// counter, giving the same optimistic read-modify-write contract as the
// document stores. Works with both SQLite and PostgreSQL. Change
// notifications are in-process: a single server owns the database.
type SQLStore struct {
	db     *sql.DB
	notify *notifier
}

const sqlSchema = `
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    record TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);
`

// NewSQLStore wraps an open database handle and ensures the schema
// exists. Safe to call on every start.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if _, err := db.Exec(sqlSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLStore{db: db, notify: newNotifier()}, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Poll, error) {
	var rec string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM poll WHERE id = $1`, id).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	var p models.Poll
	if err := json.Unmarshal([]byte(rec), &p); err != nil {
		return nil, fmt.Errorf("failed to decode poll record: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) Create(ctx context.Context, p *models.Poll) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode poll record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO poll (id, record, version)
		VALUES ($1, $2, 1)
	`, p.ID, string(b))
	if err != nil {
		// Driver-specific duplicate key messages (sqlite and pq).
		msg := err.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value violates unique constraint") {
			return ErrExists
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (s *SQLStore) TxUpdate(ctx context.Context, id string, fn UpdateFn) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var rec string
		var version int64
		err := s.db.QueryRowContext(ctx, `
			SELECT record, version FROM poll WHERE id = $1
		`, id).Scan(&rec, &version)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query poll: %w", err)
		}

		var p models.Poll
		if err := json.Unmarshal([]byte(rec), &p); err != nil {
			return fmt.Errorf("failed to decode poll record: %w", err)
		}

		changed, err := fn(&p)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		// The record's version mirrors the column, so notifications
		// carry their commit order.
		p.Version = version + 1

		b, err := json.Marshal(&p)
		if err != nil {
			return fmt.Errorf("failed to encode poll record: %w", err)
		}

		// Compare-and-swap on the version column. Zero rows affected
		// means a concurrent writer got there first; re-read and retry.
		res, err := s.db.ExecContext(ctx, `
			UPDATE poll SET record = $1, version = $2
			WHERE id = $3 AND version = $4
		`, string(b), version+1, id, version)
		if err != nil {
			return fmt.Errorf("failed to update poll: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 1 {
			s.notify.publish(&p)
			return nil
		}
	}
	return ErrConflict
}

func (s *SQLStore) Subscribe(pollID string, onChange func(*models.Poll)) (func(), error) {
	return s.notify.subscribe(pollID, onChange), nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
