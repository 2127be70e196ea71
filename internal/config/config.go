// Package config loads the optional kopeer configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset.
type DefaultsConfig struct {
	Limit       *int     `toml:"limit"`
	Dereference *bool    `toml:"dereference"`
	Verify      *bool    `toml:"verify"`
	BWLimit     *string  `toml:"bwlimit"`
	Ignore      []string `toml:"ignore"`
}

// ThemeConfig holds optional color overrides for the completion summary.
type ThemeConfig struct {
	Success *string `toml:"success"`
	Failure *string `toml:"failure"`
	Muted   *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kopeer", "config.toml")
}

// Load reads the config file from Path. A missing file yields a zero Config.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if l := cfg.Defaults.Limit; l != nil && *l < 1 {
		return Config{}, fmt.Errorf("config %s: limit must be at least 1, got %d", path, *l)
	}
	return cfg, nil
}
