package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewport.MinZoom != 0.5 || cfg.Viewport.MaxZoom != 2 {
		t.Errorf("expected default zoom range [0.5, 2], got [%v, %v]",
			cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom)
	}
	if cfg.Viewport.ExtentRect() != nil {
		t.Error("default translate extent should be unbounded")
	}
	if cfg.Viewport.CoalesceMs != 16 {
		t.Errorf("expected default coalesce_ms 16, got %v", cfg.Viewport.CoalesceMs)
	}
	if cfg.Grid.Enabled {
		t.Error("default grid should be disabled")
	}
	if cfg.Connection.Mode != "strict" {
		t.Errorf("expected connection mode 'strict', got %q", cfg.Connection.Mode)
	}
	if cfg.Resize.MinWidth != 10 || cfg.Resize.MinHeight != 10 {
		t.Errorf("expected minimum size 10x10, got %vx%v",
			cfg.Resize.MinWidth, cfg.Resize.MinHeight)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	dir := ConfigDir()
	if dir != "/tmp/test-xdg/flowcanvas" {
		t.Errorf("expected /tmp/test-xdg/flowcanvas, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir = ConfigDir()
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "flowcanvas")
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if cfg.Connection.Radius != 20 {
		t.Errorf("expected default radius 20, got %v", cfg.Connection.Radius)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[viewport]\nmin_zoom = 0.25\ntranslate_extent = [0.0, 0.0, 5000.0, 3000.0]\n\n[connection]\nmode = \"loose\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := Load(path)
	if cfg.Viewport.MinZoom != 0.25 {
		t.Errorf("expected min_zoom 0.25, got %v", cfg.Viewport.MinZoom)
	}
	if cfg.Viewport.MaxZoom != 2 {
		t.Errorf("expected untouched max_zoom 2, got %v", cfg.Viewport.MaxZoom)
	}
	if cfg.Connection.Mode != "loose" {
		t.Errorf("expected mode 'loose', got %q", cfg.Connection.Mode)
	}
	r := cfg.Viewport.ExtentRect()
	if r == nil || r.Width != 5000 || r.Height != 3000 {
		t.Errorf("expected extent 5000x3000, got %+v", r)
	}
}

func TestSaveAndLoadDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Grid.Enabled = true
	cfg.Grid.X = 8
	cfg.Grid.Y = 8

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := LoadDefault()
	if !loaded.Grid.Enabled || loaded.Grid.X != 8 {
		t.Errorf("expected grid 8x8 after load, got %+v", loaded.Grid)
	}
}
