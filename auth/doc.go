// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier, secret, and identity-hash utilities.

# Poll IDs

Poll identifiers are the first 8 hex characters of a UUIDv4:

	id := auth.NewPollID()

Collisions are astronomically unlikely at this scale but still possible;
the create path retries with a fresh ID when the store reports a duplicate.

# Host Secrets

Quiz-mode polls get a random 24-byte (192-bit) secret:

	secret, err := auth.NewHostSecret()

Secrets are URL-safe base64 encoded without padding. Comparison goes
through SecretsEqual, which is constant-time and never matches an empty
stored secret (non-quiz polls store none).

# IP Hashing

For privacy-preserving vote deduplication:

	identity := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. This is the voter
identity stored on the poll record. Clients behind shared NATs collide and
clients with header control can spoof it; it is an anti-ballot-stuffing
signal, not authentication.
*/
package auth
