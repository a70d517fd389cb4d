// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quickpoll/quickpoll/models"
)

const pollCollection = "polls"

// FirestoreStore maps the repository contract onto Firestore primitives
// directly: RunTransaction for the optimistic update (the client retries
// aborted transactions itself) and document snapshot listeners for change
// notifications.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects to Firestore. credentialsFile may be empty,
// in which case application-default credentials apply.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) doc(id string) *firestore.DocumentRef {
	return s.client.Collection(pollCollection).Doc(id)
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.Poll, error) {
	snap, err := s.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll document: %w", err)
	}
	var p models.Poll
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode poll document: %w", err)
	}
	return &p, nil
}

func (s *FirestoreStore) Create(ctx context.Context, p *models.Poll) error {
	_, err := s.doc(p.ID).Create(ctx, p)
	if status.Code(err) == codes.AlreadyExists {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("failed to create poll document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) TxUpdate(ctx context.Context, id string, fn UpdateFn) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(s.doc(id))
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read poll in transaction: %w", err)
		}
		var p models.Poll
		if err := snap.DataTo(&p); err != nil {
			return fmt.Errorf("failed to decode poll document: %w", err)
		}

		changed, err := fn(&p)
		if err != nil || !changed {
			return err
		}
		p.Version++
		return tx.Set(s.doc(id), &p)
	})
	if status.Code(err) == codes.Aborted {
		return ErrConflict
	}
	return err
}

func (s *FirestoreStore) Subscribe(pollID string, onChange func(*models.Poll)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	iter := s.doc(pollID).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				// Canceled unsubscribe or terminal stream error; either
				// way this listener is done.
				if status.Code(err) != codes.Canceled {
					slog.Warn("poll snapshot stream ended", "poll_id", pollID, "error", err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}
			var p models.Poll
			if err := snap.DataTo(&p); err != nil {
				slog.Warn("bad poll snapshot", "poll_id", pollID, "error", err)
				continue
			}
			onChange(&p)
		}
	}()

	return cancel, nil
}

func (s *FirestoreStore) Close() error { return s.client.Close() }
