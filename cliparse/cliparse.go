package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Store backend names accepted by -s / STORE_TYPE.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreRedis     = "redis"
	StoreFirestore = "firestore"
)

type Config struct {
	Port      int
	StoreType string
	StoreURL  string

	// Firestore backend only
	FirestoreProject string
	FirestoreCreds   string

	// Secret for hashing voter IPs into identities
	IdentitySalt string

	// Optional Kafka analytics sink
	KafkaBrokers string
	KafkaTopic   string
}

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickpoll", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StoreType, "s", "", "Store type (memory, sqlite, postgres, redis, firestore)")
	fs.StringVar(&cfg.StoreURL, "d", "", "Store URL (DSN for sqlite/postgres, URL for redis)")
	fs.StringVar(&cfg.FirestoreProject, "firestore-project", "", "Firestore project ID")
	fs.StringVar(&cfg.FirestoreCreds, "firestore-creds", "", "Firestore service account key file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IdentitySalt, "identity-salt", "", "Voter identity salt (prefer env)")

	// Optional analytics sink
	fs.StringVar(&cfg.KafkaBrokers, "kafka-brokers", "", "Comma-separated Kafka brokers (optional)")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for vote events")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.StoreType == "" {
		cfg.StoreType = os.Getenv("STORE_TYPE")
		if cfg.StoreType == "" {
			cfg.StoreType = StoreMemory
		}
	}
	if cfg.StoreURL == "" {
		cfg.StoreURL = os.Getenv("STORE_URL")
	}
	if cfg.FirestoreProject == "" {
		cfg.FirestoreProject = os.Getenv("FIRESTORE_PROJECT")
	}
	if cfg.FirestoreCreds == "" {
		cfg.FirestoreCreds = os.Getenv("FIRESTORE_CREDENTIALS")
	}

	switch cfg.StoreType {
	case StoreMemory:
	case StoreSQLite, StorePostgres, StoreRedis:
		if cfg.StoreURL == "" {
			return Config{}, fmt.Errorf("store URL required for %s (use -d or STORE_URL env)", cfg.StoreType)
		}
	case StoreFirestore:
		if cfg.FirestoreProject == "" {
			return Config{}, errors.New("FIRESTORE_PROJECT required for firestore store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	// Secrets - MUST be provided
	if cfg.IdentitySalt == "" {
		cfg.IdentitySalt = os.Getenv("IDENTITY_SALT")
	}
	if cfg.IdentitySalt == "" {
		return Config{}, errors.New("IDENTITY_SALT required")
	}

	// Kafka is optional; topic defaults when brokers are set
	if cfg.KafkaBrokers == "" {
		cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	}
	if cfg.KafkaBrokers != "" && cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "quickpoll.votes"
	}

	return cfg, nil
}
