package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Port != 10988 || cfg.GamePortBase != 14010 {
		t.Errorf("Defaults() ports = %d, %d, want 10988, 14010", cfg.Port, cfg.GamePortBase)
	}
	if cfg.IdleSessionTTL != 30*time.Minute {
		t.Errorf("Defaults().IdleSessionTTL = %s, want 30m", cfg.IdleSessionTTL)
	}
	if cfg.Catalog.Path != "database.json" || cfg.Catalog.ArtifactDir != "uploaded_games" {
		t.Errorf("Defaults().Catalog = %+v, want database.json/uploaded_games", cfg.Catalog)
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{Hostname: "127.0.0.1", Port: 10988}
	if got, want := cfg.Address(), "127.0.0.1:10988"; got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}
}

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := Defaults()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() with no config file present; diff:\n%s", diff)
	}
}
