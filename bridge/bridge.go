// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quickpoll/quickpoll/models"
	"github.com/quickpoll/quickpoll/store"
)

var ErrClosed = errors.New("bridge closed")

// Bridge converts the repository's per-poll change notifications into any
// number of independently-paced client listeners. All listeners on a poll
// share one upstream subscription; each listener owns a single-slot
// latest-value channel, so a slow or idle client costs one pending
// snapshot, never an unbounded queue.
type Bridge struct {
	repo store.Repository

	mu     sync.Mutex
	feeds  map[string]*feed
	closed bool
}

// feed is the shared upstream side for one poll.
type feed struct {
	unsubscribe func()
	listeners   map[*Listener]struct{}
}

// Listener is one client's view of a poll's change feed.
type Listener struct {
	bridge *Bridge
	pollID string
	slot   chan *models.Poll
	done   chan struct{}
	once   sync.Once

	mu          sync.Mutex
	lastVersion int64
}

func New(repo store.Repository) *Bridge {
	return &Bridge{repo: repo, feeds: make(map[string]*feed)}
}

// Listen attaches a listener to a poll's change feed. The first listener
// opens the upstream subscription; later listeners share it. Callers must
// Close the listener when the client disconnects.
func (b *Bridge) Listen(pollID string) (*Listener, error) {
	l := &Listener{
		bridge: b,
		pollID: pollID,
		slot:   make(chan *models.Poll, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	if f, ok := b.feeds[pollID]; ok {
		f.listeners[l] = struct{}{}
		return l, nil
	}

	// First listener for this poll: open the single upstream
	// subscription. Subscribe never invokes onChange synchronously, so
	// holding the lock here cannot deadlock against push.
	unsub, err := b.repo.Subscribe(pollID, func(p *models.Poll) {
		b.push(pollID, p)
	})
	if err != nil {
		return nil, err
	}
	b.feeds[pollID] = &feed{
		unsubscribe: unsub,
		listeners:   map[*Listener]struct{}{l: {}},
	}
	return l, nil
}

// push delivers a committed record to every listener's slot without ever
// blocking the notification source.
func (b *Bridge) push(pollID string, p *models.Poll) {
	b.mu.Lock()
	f, ok := b.feeds[pollID]
	if !ok {
		b.mu.Unlock()
		return
	}
	ls := make([]*Listener, 0, len(f.listeners))
	for l := range f.listeners {
		ls = append(ls, l)
	}
	b.mu.Unlock()

	for _, l := range ls {
		l.offer(p)
	}
}

// offer puts p in the slot, discarding a stale pending snapshot if the
// client has not drained it yet. Only the latest state matters: every
// snapshot is a full-state replace. Deliveries for overlapping commits
// can arrive out of commit order, so anything at or below the last
// offered version is dropped; the slot only ever moves forward.
func (l *Listener) offer(p *models.Poll) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p.Version <= l.lastVersion {
		return
	}
	l.lastVersion = p.Version

	// Drain a pending snapshot, then send. Only offer sends on the slot
	// and offers are serialized by mu, so the send cannot block.
	select {
	case <-l.slot:
	default:
	}
	l.slot <- p
}

// Next waits up to wait for a fresh snapshot. A nil error with ok=false
// means the wait timed out and the caller should emit a keep-alive. A
// non-nil error means the client context ended or the listener closed;
// the stream loop should terminate.
func (l *Listener) Next(ctx context.Context, wait time.Duration) (*models.Poll, bool, error) {
	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case p := <-l.slot:
		return p, true, nil
	case <-t.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-l.done:
		return nil, false, ErrClosed
	}
}

// Close detaches the listener. When the last listener on a poll closes,
// the upstream subscription is released; leaving it attached would leak a
// store listener per poll.
func (l *Listener) Close() {
	l.once.Do(func() {
		close(l.done)
		l.bridge.remove(l)
	})
}

func (b *Bridge) remove(l *Listener) {
	b.mu.Lock()
	f, ok := b.feeds[l.pollID]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(f.listeners, l)
	if len(f.listeners) > 0 {
		b.mu.Unlock()
		return
	}
	delete(b.feeds, l.pollID)
	unsub := f.unsubscribe
	b.mu.Unlock()

	unsub()
}

// Close shuts the bridge down: every upstream subscription is released
// and every listener's Next unblocks with ErrClosed.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	feeds := b.feeds
	b.feeds = make(map[string]*feed)
	b.mu.Unlock()

	for _, f := range feeds {
		f.unsubscribe()
		for l := range f.listeners {
			l.once.Do(func() { close(l.done) })
		}
	}
}
