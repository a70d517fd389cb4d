// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PollIDLen is the length of generated poll identifiers. Short enough to
// share in a URL, long enough that collisions are negligible; creation
// still retries on a collision rather than overwriting.
const PollIDLen = 8

// NewPollID creates a short, URL-friendly poll identifier.
func NewPollID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:PollIDLen]
}

// NewHostSecret creates a random secret for a quiz-mode poll.
// Possession of it grants reveal and unfiltered-results rights.
func NewHostSecret() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate host secret: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// SecretsEqual compares a presented secret against the stored one in
// constant time. An empty stored secret never matches anything.
func SecretsEqual(presented, stored string) bool {
	if stored == "" {
		return false
	}
	return hmac.Equal([]byte(presented), []byte(stored))
}

// HashIP creates a one-way hash of an IP address for privacy.
// Includes salt to prevent rainbow table attacks. The result is the
// voter identity used for deduplication; it is best-effort and spoofable,
// not a security control.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
