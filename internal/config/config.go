// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the shell's startup settings: prompt style, the
// PATH cache's fsnotify debounce interval, and forced color behavior. A
// config file is entirely optional — Load always returns a usable Config,
// falling back to Default on a missing or malformed file rather than
// failing startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Prompt holds prompt-rendering settings.
type Prompt struct {
	Style string `toml:"style"` // "color" or "ascii"
}

// Cache holds PathCache settings.
type Cache struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Color holds color-forcing settings, mirroring NO_COLOR/FORCE_COLOR.
type Color struct {
	Force string `toml:"force"` // "", "on", or "off"
}

// Config is the shell's full set of startup settings.
type Config struct {
	Prompt Prompt `toml:"prompt"`
	Cache  Cache  `toml:"cache"`
	Color  Color  `toml:"color"`
}

// Default returns the built-in configuration used when no config file is
// present, the file is malformed, or the home directory can't be resolved.
func Default() *Config {
	return &Config{
		Prompt: Prompt{Style: "color"},
		Cache:  Cache{DebounceMS: 250},
		Color:  Color{Force: ""},
	}
}

// Path returns the path to the TOML config file, ~/.config/goshell/config.toml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "goshell", "config.toml"), nil
}

// Load reads the config file if present and decodes it over the defaults.
// A missing file is not an error: Load returns Default() unchanged. A
// malformed file or unresolvable home directory is reported via warn but
// Load still returns a usable Config — it never fails.
func Load(warn func(msg string, err error)) *Config {
	cfg := Default()

	path, err := Path()
	if err != nil {
		if warn != nil {
			warn("could not resolve config path, using defaults", err)
		}
		return cfg
	}

	if _, statErr := os.Stat(path); statErr != nil {
		return cfg
	}

	if err := LoadTOML(cfg, path); err != nil {
		if warn != nil {
			warn("malformed config file, falling back to defaults", err)
		}
		return Default()
	}

	fillDefaults(cfg)
	return cfg
}

// LoadTOML decodes the TOML file at path into cfg, which should already
// hold defaults — fields absent from the file retain their prior values.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// fillDefaults repairs any field a partially-specified file left invalid,
// so a config file that only sets one field doesn't zero the rest.
func fillDefaults(cfg *Config) {
	if cfg.Prompt.Style != "color" && cfg.Prompt.Style != "ascii" {
		cfg.Prompt.Style = "color"
	}
	if cfg.Cache.DebounceMS <= 0 {
		cfg.Cache.DebounceMS = 250
	}
	switch cfg.Color.Force {
	case "", "on", "off":
	default:
		cfg.Color.Force = ""
	}
}
