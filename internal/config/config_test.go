package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsUsableWithoutAFile(t *testing.T) {
	cfg := Default()
	if cfg.SocketPath == "" || cfg.PlaylistPath == "" || cfg.WorkingDir == "" {
		t.Fatalf("Default() left a required field empty: %+v", cfg)
	}
}

func TestLoadWithEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoadWithMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("Load() on missing file = %+v, want Default()", cfg)
	}
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
socket_path = "/tmp/custom.sock"
initial_shuffle = true
sample_format = "s16"

[mpris]
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SocketPath != "/tmp/custom.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath)
	}
	if !cfg.InitialShuffle {
		t.Error("InitialShuffle = false, want true")
	}
	if cfg.SampleFormat != "s16" {
		t.Errorf("SampleFormat = %q", cfg.SampleFormat)
	}
	if !cfg.MPRIS.Enabled {
		t.Error("MPRIS.Enabled = false, want true")
	}
	// Fields untouched by the file keep their Default() values.
	if cfg.PlaylistPath != Default().PlaylistPath {
		t.Errorf("PlaylistPath = %q, want default %q", cfg.PlaylistPath, Default().PlaylistPath)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not = [[[ valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}
