package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultBPM          = 120
	defaultPollInterval = 100 * time.Millisecond
	minPollInterval     = 10 * time.Millisecond
)

type Config struct {
	SoundFont  string `koanf:"soundfont"`   // path to a .sf2 file for audio output
	MidiFolder string `koanf:"midi_folder"` // where to look for MIDI files (empty = cwd)

	DefaultBPM     float64 `koanf:"default_bpm"`      // fallback tempo when a file reports none
	PollIntervalMs int     `koanf:"poll_interval_ms"` // position tracker tick period
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.SoundFont = expandPath(cfg.SoundFont)
	cfg.MidiFolder = expandPath(cfg.MidiFolder)

	if cfg.DefaultBPM <= 0 {
		cfg.DefaultBPM = defaultBPM
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{
		filepath.Join(xdg.ConfigHome, "miditempo", "config.toml"),
	}

	// ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// PollInterval returns the tracker tick period with defaults applied.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return defaultPollInterval
	}
	iv := time.Duration(c.PollIntervalMs) * time.Millisecond
	if iv < minPollInterval {
		return minPollInterval
	}
	return iv
}

// HasSoundFont returns true if audio output is configured.
func (c *Config) HasSoundFont() bool {
	return c.SoundFont != ""
}
