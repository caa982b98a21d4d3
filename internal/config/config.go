// Package config loads the application settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the settings file looked up next to the group files.
const FileName = "desktop-grouping.toml"

// Config is the application-level configuration. Group state lives in the
// per-group JSON files; this file only carries settings that apply before
// any group exists.
type Config struct {
	App      App      `toml:"app"`
	Defaults Defaults `toml:"defaults"`
}

type App struct {
	// DataDir holds the group files and defaults to the directory the
	// settings file was read from.
	DataDir  string `toml:"data-dir"`
	LogLevel string `toml:"log-level"`
}

// Defaults seeds the appearance of newly created groups.
type Defaults struct {
	BackgroundColor string  `toml:"background-color"`
	BorderColor     string  `toml:"border-color"`
	Opacity         float64 `toml:"opacity"`
}

// Default returns the configuration used when no file exists.
func Default(dir string) Config {
	return Config{
		App: App{
			DataDir:  dir,
			LogLevel: "info",
		},
		Defaults: Defaults{
			Opacity: 0.5,
		},
	}
}

// DefaultDir returns the per-user settings directory.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "desktop-grouping")
}

// Load reads dir/desktop-grouping.toml. A missing file yields the defaults
// with a nil error; an unreadable or unparsable file yields the defaults
// and the error, so the caller can log it and keep going.
func Load(dir string) (Config, error) {
	cfg := Default(dir)
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(dir), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dir
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Defaults.Opacity <= 0 || cfg.Defaults.Opacity > 1 {
		cfg.Defaults.Opacity = 0.5
	}
	return cfg, nil
}
