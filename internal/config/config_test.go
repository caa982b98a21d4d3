package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.DataDir != dir {
		t.Fatalf("DataDir = %q, want %q", cfg.App.DataDir, dir)
	}
	if cfg.App.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.App.LogLevel)
	}
	if cfg.Defaults.Opacity != 0.5 {
		t.Fatalf("Opacity = %v, want 0.5", cfg.Defaults.Opacity)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[app]
log-level = "debug"

[defaults]
background-color = "#80FF0000"
opacity = 0.7
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.App.LogLevel)
	}
	if cfg.Defaults.BackgroundColor != "#80FF0000" {
		t.Fatalf("BackgroundColor = %q", cfg.Defaults.BackgroundColor)
	}
	if cfg.Defaults.Opacity != 0.7 {
		t.Fatalf("Opacity = %v", cfg.Defaults.Opacity)
	}
}

func TestLoad_BadTOMLYieldsDefaultsAndError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[app\nlog-level =")

	cfg, err := Load(dir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.App.LogLevel != "info" || cfg.Defaults.Opacity != 0.5 {
		t.Fatalf("bad file did not fall back to defaults: %+v", cfg)
	}
}

func TestLoad_OutOfRangeOpacityClamped(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[defaults]\nopacity = 3.0\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.Opacity != 0.5 {
		t.Fatalf("Opacity = %v, want 0.5", cfg.Defaults.Opacity)
	}
}
