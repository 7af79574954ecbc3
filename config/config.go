// Package config loads flowcanvas configuration from TOML.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"flowcanvas/geometry"
)

// Config holds flowcanvas configuration.
type Config struct {
	Viewport   ViewportConfig   `toml:"viewport"`
	Grid       GridConfig       `toml:"grid"`
	AutoPan    AutoPanConfig    `toml:"autopan"`
	Drag       DragConfig       `toml:"drag"`
	Connection ConnectionConfig `toml:"connection"`
	Resize     ResizeConfig     `toml:"resize"`
}

// ViewportConfig controls zoom limits and the pannable area.
type ViewportConfig struct {
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`

	// TranslateExtent bounds panning to a canvas rectangle given as
	// [x, y, width, height]. Empty means unbounded.
	TranslateExtent []float64 `toml:"translate_extent"`

	// CoalesceMs debounces transform change notifications so a pan or
	// zoom gesture reports once instead of per step. Zero reports
	// synchronously.
	CoalesceMs int `toml:"coalesce_ms"`
}

// ExtentRect returns the pan bounds, or nil when unbounded.
func (v ViewportConfig) ExtentRect() *geometry.Rect {
	if len(v.TranslateExtent) != 4 {
		return nil
	}
	return &geometry.Rect{
		X:      v.TranslateExtent[0],
		Y:      v.TranslateExtent[1],
		Width:  v.TranslateExtent[2],
		Height: v.TranslateExtent[3],
	}
}

// GridConfig controls position snapping during drags.
type GridConfig struct {
	Enabled bool    `toml:"enabled"`
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
}

// AutoPanConfig controls viewport panning near the edges during a
// gesture.
type AutoPanConfig struct {
	Margin float64 `toml:"margin"`
	Speed  float64 `toml:"speed"`
}

// DragConfig controls when a pressed node starts moving.
type DragConfig struct {
	Threshold   float64 `toml:"threshold"`    // px
	ThresholdMs int     `toml:"threshold_ms"` // hold time
}

// ConnectionConfig controls handle snapping while connecting.
type ConnectionConfig struct {
	Radius float64 `toml:"radius"`
	Mode   string  `toml:"mode"` // "strict" or "loose"
}

// ResizeConfig bounds node dimensions.
type ResizeConfig struct {
	MinWidth  float64 `toml:"min_width"`
	MinHeight float64 `toml:"min_height"`
	MaxWidth  float64 `toml:"max_width"`
	MaxHeight float64 `toml:"max_height"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewport:   ViewportConfig{MinZoom: 0.5, MaxZoom: 2, CoalesceMs: 16},
		Grid:       GridConfig{Enabled: false, X: 1, Y: 1},
		AutoPan:    AutoPanConfig{Margin: 20, Speed: 15},
		Drag:       DragConfig{Threshold: 1, ThresholdMs: 100},
		Connection: ConnectionConfig{Radius: 20, Mode: "strict"},
		Resize:     ResizeConfig{MinWidth: 10, MinHeight: 10},
	}
}

// ConfigDir returns the flowcanvas config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowcanvas")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads a config file, falling back to defaults for anything it
// doesn't set. A missing file yields the defaults.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// LoadDefault reads the config from the user's config directory.
func LoadDefault() *Config {
	return Load(configPath())
}

// Save writes the config to the user's config directory.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
