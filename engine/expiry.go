// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"strconv"
	"time"

	"github.com/quickpoll/quickpoll/models"
)

// ParseExpiry parses an expiry duration string of the form "<n>m", "<n>h",
// or "<n>d", where n is a signed integer: a negative window means the
// poll was born expired. It returns ok=false for "never", the empty
// string, "0"-valued windows, and any string it cannot parse; an
// unparsable expiry deliberately behaves like a poll that never expires
// rather than failing the request.
func ParseExpiry(s string) (time.Duration, bool) {
	if s == "" || s == models.ExpiryNever {
		return 0, false
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n == 0 {
		return 0, false
	}
	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	}
	return 0, false
}

// IsExpired reports whether the poll's voting window has elapsed at the
// given instant. Pure; callers pass their current wall-clock time so the
// synchronous read path, the vote transaction, and the stream emit path
// all evaluate expiry the same way.
func IsExpired(p *models.Poll, now time.Time) bool {
	d, ok := ParseExpiry(p.ExpiryDuration)
	if !ok {
		return false
	}
	return now.After(p.CreatedAt.UTC().Add(d))
}
