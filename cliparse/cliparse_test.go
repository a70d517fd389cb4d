// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("IDENTITY_SALT", "test-salt")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.StoreType != StoreMemory {
		t.Errorf("expected default store %q, got %q", StoreMemory, cfg.StoreType)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("STORE_URL", "postgres://test")
	t.Setenv("IDENTITY_SALT", "test-salt")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.StoreType != StorePostgres || cfg.StoreURL != "postgres://test" {
		t.Errorf("env store config not picked up: %+v", cfg)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("IDENTITY_SALT", "env-salt")

	cfg, err := ParseFlags([]string{"-p", "8080", "-s", "sqlite", "-d", "file:test.db", "-identity-salt", "cli-salt"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.IdentitySalt != "cli-salt" {
		t.Errorf("CLI should override env salt, got %q", cfg.IdentitySalt)
	}
}

func TestParseFlags_IdentitySaltRequired(t *testing.T) {
	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error when IDENTITY_SALT is missing")
	}
}

func TestParseFlags_StoreURLRequired(t *testing.T) {
	t.Setenv("IDENTITY_SALT", "test-salt")

	for _, storeType := range []string{StoreSQLite, StorePostgres, StoreRedis} {
		if _, err := ParseFlags([]string{"-s", storeType}); err == nil {
			t.Errorf("expected error for %s without store URL", storeType)
		}
	}
}

func TestParseFlags_FirestoreProjectRequired(t *testing.T) {
	t.Setenv("IDENTITY_SALT", "test-salt")

	if _, err := ParseFlags([]string{"-s", StoreFirestore}); err == nil {
		t.Error("expected error for firestore without project")
	}

	cfg, err := ParseFlags([]string{"-s", StoreFirestore, "-firestore-project", "demo-proj"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FirestoreProject != "demo-proj" {
		t.Errorf("expected project demo-proj, got %q", cfg.FirestoreProject)
	}
}

func TestParseFlags_UnknownStore(t *testing.T) {
	t.Setenv("IDENTITY_SALT", "test-salt")

	if _, err := ParseFlags([]string{"-s", "mongodb"}); err == nil {
		t.Error("expected error for unknown store type")
	}
}

func TestParseFlags_KafkaTopicDefault(t *testing.T) {
	t.Setenv("IDENTITY_SALT", "test-salt")

	cfg, err := ParseFlags([]string{"-kafka-brokers", "localhost:9092"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KafkaTopic != "quickpoll.votes" {
		t.Errorf("expected default topic, got %q", cfg.KafkaTopic)
	}

	// No brokers: topic stays empty, sink disabled.
	cfg, err = ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KafkaBrokers != "" || cfg.KafkaTopic != "" {
		t.Errorf("expected kafka disabled by default: %+v", cfg)
	}
}
