package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8000" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.SimilarityThreshold != 0.3 {
		t.Fatalf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Trip.DefaultNights != 3 {
		t.Fatalf("default nights = %d", cfg.Trip.DefaultNights)
	}
	if cfg.Storage.Sessions.Backend != "inmemory" {
		t.Fatalf("sessions backend = %q", cfg.Storage.Sessions.Backend)
	}
	if cfg.Providers.OpenAI.Enabled() {
		t.Fatalf("openai should be disabled without an api key")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"server":{"address":":9100"},"retrieval":{"similarity_threshold":0.5},"storage":{"postgres":{"url":"postgres://u:p@db:5432/concierge"}}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9100" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.5 {
		t.Fatalf("threshold = %v", cfg.Retrieval.SimilarityThreshold)
	}
	if !cfg.Storage.Postgres.Enabled() {
		t.Fatalf("postgres should be enabled")
	}
	if got := cfg.Storage.Postgres.DSN(); got != "postgres://u:p@db:5432/concierge" {
		t.Fatalf("dsn = %q", got)
	}
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"retrieval":{"similarity_threshold":1.5}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
