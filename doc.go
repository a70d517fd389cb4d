// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the QuickPoll API server.

QuickPoll is an anonymous polling service: a host creates a poll with
fixed options and an expiry window, shares the link, and watches results
update live. Quiz mode hides results from participants until the host
reveals them.

# Starting the Server

The server runs on the in-memory store with no setup:

	IDENTITY_SALT=dev-salt go run main.go

Or against a real backend:

	go run main.go -s postgres -d "postgres://..." -identity-salt "..."
	go run main.go -s firestore -firestore-project my-project
	go run main.go -s redis -d "redis://localhost:6379"

# Configuration

Required settings:

  - IDENTITY_SALT (-identity-salt): secret for hashing voter addresses

Optional settings:

  - PORT (-p): server port (default: 3318)
  - STORE_TYPE (-s): memory, sqlite, postgres, redis, firestore
  - STORE_URL (-d): DSN/URL for the chosen store
  - KAFKA_BROKERS / KAFKA_TOPIC: analytics sink for counted votes

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: expiry, visibility, and the vote transaction
  - bridge: fan-out from store change notifications to client streams
  - store: poll repository (memory, SQL, Redis, Firestore backends)
  - handlers: HTTP request handlers (polls, voting, streams)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, client-IP extraction
  - models: domain and request/response types
  - auth: ids, host secrets, identity hashing
  - event: optional Kafka vote-event publisher
  - metrics: Prometheus counters and gauges
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
