package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected defaults when file is missing, got %v", err)
	}
	if cfg.Scryfall.BaseURL != "https://api.scryfall.com" {
		t.Errorf("unexpected base URL %q", cfg.Scryfall.BaseURL)
	}
	if cfg.Scryfall.MinDelay != 200*time.Millisecond {
		t.Errorf("unexpected min delay %v", cfg.Scryfall.MinDelay)
	}
	if cfg.Scryfall.MaxRetries != 6 {
		t.Errorf("unexpected max retries %d", cfg.Scryfall.MaxRetries)
	}
	if cfg.Naming.Policy != "oracle" {
		t.Errorf("unexpected naming policy %q", cfg.Naming.Policy)
	}
	if !cfg.Naming.FullBorder {
		t.Error("full border should default on")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	want := DefaultConfig()
	want.Scryfall.MinDelay = 50 * time.Millisecond
	want.Scryfall.MaxRetries = 2
	want.Dirs.Base = "/tmp/forge"
	want.Naming.Policy = "printed"
	want.Naming.RotateSplit = true
	want.Log.Level = "debug"

	data, err := yaml.Marshal(want)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "forgefetch.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Scryfall.MinDelay != 50*time.Millisecond {
		t.Errorf("min delay = %v, want 50ms", cfg.Scryfall.MinDelay)
	}
	if cfg.Scryfall.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.Scryfall.MaxRetries)
	}
	if cfg.Dirs.Base != "/tmp/forge" {
		t.Errorf("base dir = %q", cfg.Dirs.Base)
	}
	if cfg.Naming.Policy != "printed" {
		t.Errorf("policy = %q, want printed", cfg.Naming.Policy)
	}
	if !cfg.Naming.RotateSplit {
		t.Error("rotateSplit should be true")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "info"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "forgefetch.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("FORGEFETCH_LOG_LEVEL", "debug")
	t.Setenv("FORGEFETCH_BASE_DIR", "/var/forge")
	t.Setenv("FORGEFETCH_NAMING_POLICY", "printed")

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Log.Level != "debug" {
		t.Errorf("log level = %q, want env override debug", got.Log.Level)
	}
	if got.Dirs.Base != "/var/forge" {
		t.Errorf("base dir = %q, want env override", got.Dirs.Base)
	}
	if got.Naming.Policy != "printed" {
		t.Errorf("policy = %q, want env override", got.Naming.Policy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty base URL", func(c *Config) { c.Scryfall.BaseURL = "" }, true},
		{"zero retries", func(c *Config) { c.Scryfall.MaxRetries = 0 }, true},
		{"negative delay", func(c *Config) { c.Scryfall.MinDelay = -time.Second }, true},
		{"backoff below one", func(c *Config) { c.Scryfall.BackoffBase = 0.5 }, true},
		{"empty base dir", func(c *Config) { c.Dirs.Base = "" }, true},
		{"bad policy", func(c *Config) { c.Naming.Policy = "fancy" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"printed policy ok", func(c *Config) { c.Naming.Policy = "printed" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDirHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dirs.Base = "/data"
	if got := cfg.CardsDir(); got != filepath.Join("/data", "Cards") {
		t.Errorf("CardsDir = %q", got)
	}
	if got := cfg.SinglesDir(); got != filepath.Join("/data", "Singles") {
		t.Errorf("SinglesDir = %q", got)
	}
	if got := cfg.TokensDir(); got != filepath.Join("/data", "Tokens") {
		t.Errorf("TokensDir = %q", got)
	}
}
