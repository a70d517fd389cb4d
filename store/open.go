// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/quickpoll/quickpoll/cliparse"
)

// Open builds the repository selected by configuration.
func Open(ctx context.Context, cfg cliparse.Config) (Repository, error) {
	switch cfg.StoreType {
	case "", cliparse.StoreMemory:
		return NewMemoryStore(), nil

	case cliparse.StoreSQLite, cliparse.StorePostgres:
		driver := "sqlite"
		if cfg.StoreType == cliparse.StorePostgres {
			driver = "postgres"
		}
		db, err := sql.Open(driver, cfg.StoreURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return NewSQLStore(db)

	case cliparse.StoreRedis:
		return NewRedisStore(ctx, cfg.StoreURL)

	case cliparse.StoreFirestore:
		return NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.FirestoreCreds)
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
}
