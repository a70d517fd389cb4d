// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quickpoll/quickpoll/models"
)

// RedisStore keeps each poll as a JSON value under a WATCHed key, so
// TxUpdate is a real optimistic transaction: if another writer touches
// the key between our read and our MULTI/EXEC, the EXEC fails and we
// retry. Change notifications ride Redis pub/sub, so they work across
// multiple server processes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	return &RedisStore{client: c}, nil
}

func pollKey(id string) string     { return "poll:" + id }
func pollChannel(id string) string { return "poll:" + id + ":changed" }

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Poll, error) {
	val, err := s.client.Get(ctx, pollKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting poll from redis: %w", err)
	}
	var p models.Poll
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("error decoding poll record: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Create(ctx context.Context, p *models.Poll) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("error encoding poll record: %w", err)
	}
	ok, err := s.client.SetNX(ctx, pollKey(p.ID), b, 0).Result()
	if err != nil {
		return fmt.Errorf("error creating poll in redis: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) TxUpdate(ctx context.Context, id string, fn UpdateFn) error {
	key := pollKey(id)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var p models.Poll
		var changed bool

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("error getting poll from redis: %w", err)
			}
			if err := json.Unmarshal([]byte(val), &p); err != nil {
				return fmt.Errorf("error decoding poll record: %w", err)
			}

			changed, err = fn(&p)
			if err != nil || !changed {
				return err
			}

			// WATCH serializes this commit; the version stamps its order
			// for pub/sub consumers.
			p.Version++

			b, err := json.Marshal(&p)
			if err != nil {
				return fmt.Errorf("error encoding poll record: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, b, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, re-read and retry
		}
		if err != nil {
			return err
		}
		if changed {
			b, _ := json.Marshal(&p)
			if err := s.client.Publish(ctx, pollChannel(id), b).Err(); err != nil {
				slog.Warn("failed to publish poll change", "poll_id", id, "error", err)
			}
		}
		return nil
	}
	return ErrConflict
}

func (s *RedisStore) Subscribe(pollID string, onChange func(*models.Poll)) (func(), error) {
	ps := s.client.Subscribe(context.Background(), pollChannel(pollID))
	// Force the subscription onto the wire before returning, so a change
	// committed right after Subscribe is not missed.
	if _, err := ps.Receive(context.Background()); err != nil {
		ps.Close()
		return nil, fmt.Errorf("error subscribing to poll channel: %w", err)
	}

	go func() {
		for msg := range ps.Channel() {
			var p models.Poll
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				slog.Warn("bad poll change payload", "poll_id", pollID, "error", err)
				continue
			}
			onChange(&p)
		}
	}()

	return func() { _ = ps.Close() }, nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
