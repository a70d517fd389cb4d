// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package bridge fans one per-poll change-notification subscription out to
many independently-paced client listeners.

# Shape

	l, err := br.Listen(pollID)
	defer l.Close()
	for {
		p, ok, err := l.Next(ctx, 30*time.Second)
		if err != nil {
			return // client gone or bridge shut down
		}
		if !ok {
			// idle window elapsed; emit a keep-alive
			continue
		}
		// filter and emit p
	}

Each listener holds a single-slot latest-value channel. The upstream
notifier never blocks: a snapshot the client has not read yet is simply
replaced by the newer one. Notifications for overlapping commits can
arrive out of commit order, so the slot is guarded by the record's
Version: anything not newer than the last offered snapshot is dropped.
Delivery therefore coalesces intermediate states and guarantees
convergence to the latest state, not replay of every change.

The first listener on a poll opens the repository subscription; the last
one to close releases it. One subscription per poll, regardless of how
many clients are streaming it.
*/
package bridge
