package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Engine kinds.
const (
	EngineLocal = "local"
	EngineMPD   = "mpd"
)

// Defaults applied by the Get*Config helpers.
const (
	DefaultMPDHost           = "localhost"
	DefaultMPDPort           = 6600
	DefaultHistoryThreshold  = 30 * time.Second
	DefaultPlayCountFraction = 0.5
	DefaultLogLevel          = "info"
)

type Config struct {
	Engine         string   `koanf:"engine"`          // "local" (default) or "mpd"
	Database       string   `koanf:"database"`        // empty means the XDG data dir
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library
	Notifications  bool     `koanf:"notifications"`   // desktop notification on song change

	MPD MPDConfig `koanf:"mpd"`

	Bookkeeping BookkeepingConfig `koanf:"bookkeeping"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	Log LogConfig `koanf:"log"`
}

// MPDConfig holds the music daemon connection settings.
type MPDConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	// MusicDirectory is the daemon's music_directory as seen from here.
	// Library paths below it are sent to MPD relative to it.
	MusicDirectory string `koanf:"music_directory"`
}

// BookkeepingConfig holds the listening history thresholds.
type BookkeepingConfig struct {
	HistoryThresholdSeconds int     `koanf:"history_threshold_seconds"`
	PlayCountFraction       float64 `koanf:"play_count_fraction"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // trace, debug, info, warn, error
	File  string `koanf:"file"`  // empty means the XDG state dir
}

// Load reads the user config then ./config.toml, the latter overriding.
// Missing files are skipped.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	return unmarshal(k)
}

// LoadFrom reads a single config file, which must exist.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")
	path = expandPath(path)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Engine == "" {
		cfg.Engine = EngineLocal
	}
	if cfg.Engine != EngineLocal && cfg.Engine != EngineMPD {
		return nil, fmt.Errorf("unknown engine %q (want %q or %q)", cfg.Engine, EngineLocal, EngineMPD)
	}

	cfg.Database = expandPath(cfg.Database)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.MPD.MusicDirectory = expandPath(cfg.MPD.MusicDirectory)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/eddy/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "eddy", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
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

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetMPDConfig returns the daemon settings with defaults applied.
func (c *Config) GetMPDConfig() MPDConfig {
	cfg := c.MPD
	if cfg.Host == "" {
		cfg.Host = DefaultMPDHost
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = DefaultMPDPort
	}
	return cfg
}

// GetBookkeepingConfig returns the history threshold and play-count
// fraction with defaults applied.
func (c *Config) GetBookkeepingConfig() (time.Duration, float64) {
	threshold := DefaultHistoryThreshold
	if c.Bookkeeping.HistoryThresholdSeconds > 0 {
		threshold = time.Duration(c.Bookkeeping.HistoryThresholdSeconds) * time.Second
	}
	fraction := c.Bookkeeping.PlayCountFraction
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultPlayCountFraction
	}
	return threshold, fraction
}

// GetLogConfig returns the log settings with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	return cfg
}
