package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Store.Path != nil || cfg.Recovery.Enabled != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[dictionary]
path = "/tmp/cmudict.dict"

[store]
path = "/tmp/catalog.db"

[recovery]
enabled = false
model = "gemini-2.0-flash-lite"
api-key-env = "LYB_KEY"
delay-ms = 250

[dialect]
command = "espeak"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dictionary.Path == nil || *cfg.Dictionary.Path != "/tmp/cmudict.dict" {
		t.Fatalf("unexpected dictionary path: %v", cfg.Dictionary.Path)
	}
	if cfg.Recovery.Enabled == nil || *cfg.Recovery.Enabled {
		t.Fatalf("expected recovery disabled")
	}
	if cfg.Recovery.DelayMs == nil || *cfg.Recovery.DelayMs != 250 {
		t.Fatalf("unexpected delay: %v", cfg.Recovery.DelayMs)
	}
	if cfg.Dialect.Enabled != nil {
		t.Fatalf("absent key should stay nil")
	}
	if cfg.Dialect.Command == nil || *cfg.Dialect.Command != "espeak" {
		t.Fatalf("unexpected dialect command: %v", cfg.Dialect.Command)
	}

	t.Setenv("LYB_KEY", "secret")
	if got := cfg.Recovery.APIKey(); got != "secret" {
		t.Fatalf("unexpected api key %q", got)
	}
}

func TestAPIKeyDefaultEnv(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "from-default")
	if got := (RecoveryConfig{}).APIKey(); got != "from-default" {
		t.Fatalf("unexpected api key %q", got)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store]\npth = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "lybrarian", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "lybrarian", "lybrarian.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultDictionaryPath(); got != filepath.Join("/data", "lybrarian", "cmudict.dict") {
		t.Fatalf("unexpected dictionary path %q", got)
	}
}
