// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

CLI flags take priority over environment variables:

	-p               / PORT                    server port (default 3318)
	-s               / STORE_TYPE              memory, sqlite, postgres, redis, firestore
	-d               / STORE_URL               DSN or URL for the chosen store
	-firestore-project / FIRESTORE_PROJECT     Firestore project ID
	-firestore-creds / FIRESTORE_CREDENTIALS   service account key file
	-identity-salt   / IDENTITY_SALT           required; salts voter IP hashing
	-kafka-brokers   / KAFKA_BROKERS           optional analytics sink
	-kafka-topic     / KAFKA_TOPIC             defaults to quickpoll.votes

The memory store is the default and needs no URL. SQL and Redis stores
require a URL; Firestore requires a project ID.
*/
package cliparse
