// Package app glues the graphics window to the console and owns the
// JSON-backed configuration both read their defaults from.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the subset of window/audio/path settings the emulator
// exposes for tuning; save states, rewind, and debug overlays are out
// of scope (see DESIGN.md).
type Config struct {
	Window WindowConfig `json:"window"`
	Audio  AudioConfig  `json:"audio"`
	Paths  PathsConfig  `json:"paths"`

	configPath string
}

// WindowConfig controls the Ebitengine window's initial geometry.
type WindowConfig struct {
	Scale  int `json:"scale"`  // NES-resolution multiplier; 256*Scale x 240*Scale
	Width  int `json:"width"`  // 0 means "derive from Scale"
	Height int `json:"height"` // 0 means "derive from Scale"
}

// AudioConfig controls APU sample playback.
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sample_rate"`
}

// PathsConfig holds a save-data directory setting. Application does not
// read it: battery-backed save files are always written next to the ROM.
type PathsConfig struct {
	SaveData string `json:"save_data"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{Scale: 3},
		Audio:  AudioConfig{Enabled: true, SampleRate: 44100},
		Paths:  PathsConfig{SaveData: "."},
	}
}

// LoadConfig reads path as JSON over the defaults; a missing file is not
// an error; the defaults are written back so the file exists next run.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, cfg.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("app: read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("app: parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 3
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
}

// Save writes the configuration back to its loaded path.
func (c *Config) Save() error {
	if c.configPath == "" {
		return nil
	}
	if dir := filepath.Dir(c.configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("app: create config dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("app: marshal config: %w", err)
	}
	return os.WriteFile(c.configPath, data, 0644)
}

// WindowSize resolves the configured window dimensions, honoring an
// explicit width/height override before falling back to Scale.
func (c *Config) WindowSize() (int, int) {
	if c.Window.Width > 0 && c.Window.Height > 0 {
		return c.Window.Width, c.Window.Height
	}
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}
