package config

import (
	"os"
	"path/filepath"
)

const appName = "lybrarian"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultDBPath returns the default path for the SQLite catalog.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "lybrarian.db")
}

// DefaultDictionaryPath returns the default path of the CMU pronouncing dictionary.
func DefaultDictionaryPath() string {
	return filepath.Join(XDGDataHome(), appName, "cmudict.dict")
}

// DefaultVaultDir returns the default markdown export directory.
func DefaultVaultDir() string {
	return filepath.Join(XDGDataHome(), appName, "fragments")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
