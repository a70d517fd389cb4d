// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the poll repository: one document per poll, an
optimistic read-modify-write transaction, and per-poll change
notifications.

# Contract

	p, err := repo.Get(ctx, id)                  // copy or ErrNotFound
	err := repo.Create(ctx, p)                   // ErrExists on duplicate id
	err := repo.TxUpdate(ctx, id, fn)            // serialized per poll id
	cancel, err := repo.Subscribe(id, onChange)  // committed records, post-commit

TxUpdate hands fn a private copy of the current record. fn either mutates
it and returns true, or returns false for a no-op. On a write conflict
the store re-reads and calls fn again, bounded by a retry budget;
exhausting it returns ErrConflict with nothing committed.

Every commit stamps the record's Version in commit order. Notification
delivery runs outside the serialization point and may interleave, so
subscribers order snapshots by Version rather than arrival.

# Backends

  - MemoryStore: mutex-serialized map. Default for development and the
    only backend tests require.
  - SQLStore: SQLite or PostgreSQL via database/sql; each poll is a JSON
    record column guarded by a version counter (compare-and-swap UPDATE).
    Change notifications are in-process.
  - RedisStore: WATCH/MULTI/EXEC optimistic transactions, pub/sub change
    notifications. Works across server processes.
  - FirestoreStore: native RunTransaction and document snapshot listeners.

Open selects a backend from configuration.
*/
package store
