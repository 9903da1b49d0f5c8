// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultAPIKeyEnv names the environment variable holding the completion API key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dictionary DictionaryConfig `toml:"dictionary"`
	Store      StoreConfig      `toml:"store"`
	Recovery   RecoveryConfig   `toml:"recovery"`
	Dialect    DialectConfig    `toml:"dialect"`
	Vault      VaultConfig      `toml:"vault"`
}

// DictionaryConfig maps pronunciation dictionary settings.
type DictionaryConfig struct {
	Path *string `toml:"path"`
	URL  *string `toml:"url"`
}

// StoreConfig maps catalog database settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// RecoveryConfig maps rhyme recovery settings.
type RecoveryConfig struct {
	Enabled   *bool   `toml:"enabled"`
	Model     *string `toml:"model"`
	APIKeyEnv *string `toml:"api-key-env"`
	DelayMs   *int    `toml:"delay-ms"`
}

// DialectConfig maps British transcription tool settings.
type DialectConfig struct {
	Enabled *bool   `toml:"enabled"`
	Command *string `toml:"command"`
}

// VaultConfig maps markdown export settings.
type VaultConfig struct {
	Dir *string `toml:"dir"`
}

// APIKey returns the completion API key from the configured environment
// variable.
func (c RecoveryConfig) APIKey() string {
	name := DefaultAPIKeyEnv
	if c.APIKeyEnv != nil && *c.APIKeyEnv != "" {
		name = *c.APIKeyEnv
	}
	return os.Getenv(name)
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
