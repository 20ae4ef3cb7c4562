// Package config handles torrench configuration via a TOML file at
// $XDG_CONFIG_HOME/torrench/config.toml. It covers the torrent client,
// download and details directories, logging, fetch tuning, and the mirror
// list of every site.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration
type Config struct {
	Client    ClientConfig          `toml:"client"`
	Downloads DownloadsConfig       `toml:"downloads"`
	Details   DetailsConfig         `toml:"details"`
	Log       LogConfig             `toml:"log"`
	Fetch     FetchConfig           `toml:"fetch"`
	Sites     map[string]SiteConfig `toml:"sites"`
}

// ClientConfig selects the torrent client used by the load action.
// Name is transmission-remote, qbittorrent, or any executable that takes
// a magnet link as its argument.
type ClientConfig struct {
	Name     string `toml:"name"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// DownloadsConfig holds download settings
type DownloadsConfig struct {
	Path string `toml:"path"`
}

// DetailsConfig is where saved detail pages go.
type DetailsConfig struct {
	Path string `toml:"path"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

// FetchConfig tunes HTTP behaviour.
type FetchConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Concurrency       int     `toml:"concurrency"`
	SocksProxy        string  `toml:"socks_proxy"`
	UserAgent         string  `toml:"user_agent"`
}

// Timeout is the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// SiteConfig lists the mirrors of one site in preference order. Enabled
// defaults to true; an empty Proxies list means the built-in mirrors.
type SiteConfig struct {
	Enabled *bool    `toml:"enabled,omitempty"`
	Proxies []string `toml:"proxies"`
}

// Off reports whether the site was switched off explicitly.
func (s SiteConfig) Off() bool {
	return s.Enabled != nil && !*s.Enabled
}

// DefaultProxies are the mirrors tried when the config names none.
var DefaultProxies = map[string][]string{
	"tpb":          {"https://thepiratebay.org", "https://thepiratebay10.org", "https://tpb.party"},
	"kat":          {"https://kickasstorrents.to", "https://katcr.to"},
	"sky":          {"https://www.skytorrents.lol"},
	"nyaa":         {"https://nyaa.si"},
	"linuxtracker": {"http://linuxtracker.org"},
}

// Default returns the default configuration
func Default() Config {
	home, _ := os.UserHomeDir()

	sites := make(map[string]SiteConfig, len(DefaultProxies))
	for k, p := range DefaultProxies {
		sites[k] = SiteConfig{Proxies: append([]string(nil), p...)}
	}

	return Config{
		Client: ClientConfig{
			Name: "transmission-remote",
			Host: "localhost",
			Port: 9091,
		},
		Downloads: DownloadsConfig{
			Path: filepath.Join(home, "Downloads", "torrench"),
		},
		Details: DetailsConfig{
			Path: filepath.Join(home, ".torrench", "temp"),
		},
		Log: LogConfig{
			File:       filepath.Join(stateDir(home), "torrench", "torrench.log"),
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 15,
			Concurrency:    1,
		},
		Sites: sites,
	}
}

func stateDir(home string) string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return d
	}
	return filepath.Join(home, ".local", "state")
}

// Dir is the configuration directory.
func Dir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "torrench")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "torrench")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads config from ConfigPath, or returns defaults.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads config from path. A missing file yields defaults, merged
// with a legacy torrench.ini next to it when one exists.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if legacy := filepath.Join(filepath.Dir(path), LegacyFile); fileExists(legacy) {
			return cfg, ImportLegacy(legacy, &cfg)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second cannot be negative")
	}
	return nil
}

// Proxies returns the mirrors configured for site, in order. A disabled
// site has none.
func (c Config) Proxies(site string) []string {
	s, ok := c.Sites[site]
	switch {
	case ok && s.Off():
		return nil
	case !ok || len(s.Proxies) == 0:
		return DefaultProxies[site]
	}
	return s.Proxies
}

// Save writes config to path
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureDownloadDir creates the download directory if it doesn't exist
func EnsureDownloadDir(cfg Config) error {
	return os.MkdirAll(cfg.Downloads.Path, 0o755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
