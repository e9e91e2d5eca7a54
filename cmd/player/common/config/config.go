// Package config provides configuration loading for tunes.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the tunes configuration file structure.
type Config struct {
	// Catalog is the default catalog: a JSON file or a music directory.
	Catalog  string          `json:"catalog,omitempty"`
	Playback *PlaybackConfig `json:"playback,omitempty"`
	Audio    *AudioConfig    `json:"audio,omitempty"`
	Notify   *NotifyConfig   `json:"notify,omitempty"`
}

// PlaybackConfig holds the player screen defaults.
type PlaybackConfig struct {
	Volume        *float64 `json:"volume,omitempty"`
	Preset        string   `json:"preset,omitempty"`
	ExcludeRecent int      `json:"exclude_recent"`
	AutoAdvance   *bool    `json:"auto_advance,omitempty"`
}

// AudioConfig holds output device settings.
type AudioConfig struct {
	SampleRate int `json:"sample_rate,omitempty"`
	BufferMs   int `json:"buffer_ms,omitempty"`
}

// NotifyConfig controls desktop notifications on track changes.
type NotifyConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	volume := 0.8
	autoAdvance := true
	return &Config{
		Playback: &PlaybackConfig{
			Volume:      &volume,
			Preset:      "flat",
			AutoAdvance: &autoAdvance,
		},
		Audio: &AudioConfig{
			SampleRate: 44100,
			BufferMs:   100,
		},
		Notify: &NotifyConfig{
			Enabled: false,
		},
	}
}

// ConfigDir returns the tunes config directory (~/.tunes).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tunes")
}

// ConfigPath returns the path to the config file (~/.tunes/config.json).
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ~/.tunes/config.json.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the config from path, filling in defaults for anything
// the file leaves out.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()

	// Apply defaults for missing sections
	if config.Playback == nil {
		config.Playback = defaults.Playback
	} else {
		if config.Playback.Volume == nil {
			config.Playback.Volume = defaults.Playback.Volume
		}
		if config.Playback.Preset == "" {
			config.Playback.Preset = defaults.Playback.Preset
		}
		if config.Playback.AutoAdvance == nil {
			config.Playback.AutoAdvance = defaults.Playback.AutoAdvance
		}
	}
	if config.Audio == nil {
		config.Audio = defaults.Audio
	} else {
		if config.Audio.SampleRate == 0 {
			config.Audio.SampleRate = defaults.Audio.SampleRate
		}
		if config.Audio.BufferMs == 0 {
			config.Audio.BufferMs = defaults.Audio.BufferMs
		}
	}
	if config.Notify == nil {
		config.Notify = defaults.Notify
	}

	return &config, nil
}

// Save saves the config to ~/.tunes/config.json.
func Save(config *Config) error {
	return SaveTo(ConfigPath(), config)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// VolumeOrDefault returns the configured volume.
func (c *PlaybackConfig) VolumeOrDefault() float64 {
	if c == nil || c.Volume == nil {
		return *DefaultConfig().Playback.Volume
	}
	return *c.Volume
}

// AutoAdvanceOrDefault returns whether finished tracks advance to the next one.
func (c *PlaybackConfig) AutoAdvanceOrDefault() bool {
	if c == nil || c.AutoAdvance == nil {
		return true
	}
	return *c.AutoAdvance
}
