// Package config loads and saves user preferences from
// ~/.sessiondex/config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	dark "github.com/thiagokokada/dark-mode-go"
)

// FileName is the TOML config file for user preferences
const FileName = "config.toml"

// Config represents user-facing configuration in TOML format
type Config struct {
	// ProjectsDir overrides the transcript root scanned by the indexer.
	// Default: CLAUDE_CONFIG_DIR/projects or ~/.claude/projects
	ProjectsDir string `toml:"projects_dir"`

	// IndexPath overrides the SQLite index location.
	// Default: os.UserCacheDir()/sessiondex/index.db
	IndexPath string `toml:"index_path"`

	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Search defines prompt search display settings
	Search SearchSettings `toml:"search"`

	// Watch defines filesystem watch mode settings
	Watch WatchSettings `toml:"watch"`

	// Logs defines debug log management settings
	Logs LogSettings `toml:"logs"`
}

// SearchSettings defines search result display configuration
type SearchSettings struct {
	// SnippetWidth is the rune width of match snippets in search output
	// Default: 80
	SnippetWidth int `toml:"snippet_width"`
}

// WatchSettings defines watch mode configuration
type WatchSettings struct {
	// MinIntervalSeconds is the minimum delay between rebuilds triggered
	// by filesystem events
	// Default: 2
	MinIntervalSeconds int `toml:"min_interval_seconds"`
}

// MinInterval returns the rebuild rate limit with the default applied
func (w WatchSettings) MinInterval() time.Duration {
	if w.MinIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(w.MinIntervalSeconds) * time.Second
}

// LogSettings defines debug log file configuration
type LogSettings struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `toml:"level"`

	// Format sets the log format: "json" (default) or "text"
	Format string `toml:"format"`

	// MaxSizeMB is the max size in MB of the log file before rotation
	// Default: 10
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep
	// Default: 5
	MaxBackups int `toml:"max_backups"`

	// MaxAgeDays is the number of days to keep rotated logs
	// Default: 10
	MaxAgeDays int `toml:"max_age_days"`
}

var defaultConfig = Config{}

// Cache for user config (loaded once per process)
var (
	configCache   *Config
	configCacheMu sync.RWMutex
)

// Dir returns the base sessiondex directory (~/.sessiondex)
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".sessiondex"), nil
}

// Path returns the path to the user config file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the user configuration from the TOML file.
// Returns cached config after first load. A missing file yields the
// defaults without error; a malformed file yields the defaults plus the
// parse error so the caller can surface it.
func Load() (*Config, error) {
	configCacheMu.RLock()
	if configCache != nil {
		defer configCacheMu.RUnlock()
		return configCache, nil
	}
	configCacheMu.RUnlock()

	configCacheMu.Lock()
	defer configCacheMu.Unlock()

	// Double-check after acquiring write lock
	if configCache != nil {
		return configCache, nil
	}

	configPath, err := Path()
	if err != nil {
		configCache = &defaultConfig
		return configCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configCache = &defaultConfig
		return configCache, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		// Cache the defaults to prevent repeated parse attempts
		configCache = &defaultConfig
		return configCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	configCache = &cfg
	return configCache, nil
}

// Reload forces a fresh read of the user config
func Reload() (*Config, error) {
	ClearCache()
	return Load()
}

// ClearCache drops the cached config so the next Load reads from disk
func ClearCache() {
	configCacheMu.Lock()
	configCache = nil
	configCacheMu.Unlock()
}

// Save writes the config to config.toml using an atomic write:
// temp file, fsync, rename. The cache is cleared so the next Load
// picks up the saved values.
func Save(cfg *Config) error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# sessiondex configuration\n")
	buf.WriteString("# Edit this file or remove it to fall back to defaults\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	// Rename is still atomic without the fsync, so a failure here is tolerable
	_ = syncFile(tmpPath)
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearCache()
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// ResolvedProjectsDir returns projects_dir with ~ expanded, or ""
// when the default transcript root should be used
func (c *Config) ResolvedProjectsDir() string {
	return expandHome(c.ProjectsDir)
}

// ResolvedIndexPath returns index_path with ~ expanded, or ""
// when the default index location should be used
func (c *Config) ResolvedIndexPath() string {
	return expandHome(c.IndexPath)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// GetTheme returns the configured theme, defaulting to "dark"
func GetTheme() string {
	cfg, err := Load()
	if err != nil || cfg == nil {
		return "dark"
	}
	switch cfg.Theme {
	case "dark", "light", "system":
		return cfg.Theme
	default:
		return "dark"
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// If theme is "system", detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// GetSearchSettings returns search settings with defaults applied
func GetSearchSettings() SearchSettings {
	settings := SearchSettings{SnippetWidth: 80}
	cfg, err := Load()
	if err != nil || cfg == nil {
		return settings
	}
	if cfg.Search.SnippetWidth > 0 {
		settings.SnippetWidth = cfg.Search.SnippetWidth
	}
	return settings
}

// GetWatchSettings returns watch settings as configured; defaults are
// applied by WatchSettings.MinInterval
func GetWatchSettings() WatchSettings {
	cfg, err := Load()
	if err != nil || cfg == nil {
		return WatchSettings{}
	}
	return cfg.Watch
}

// GetLogSettings returns log settings with defaults applied
func GetLogSettings() LogSettings {
	settings := LogSettings{
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 10,
	}
	cfg, err := Load()
	if err != nil || cfg == nil {
		return settings
	}
	if cfg.Logs.Level != "" {
		settings.Level = cfg.Logs.Level
	}
	if cfg.Logs.Format != "" {
		settings.Format = cfg.Logs.Format
	}
	if cfg.Logs.MaxSizeMB > 0 {
		settings.MaxSizeMB = cfg.Logs.MaxSizeMB
	}
	if cfg.Logs.MaxBackups > 0 {
		settings.MaxBackups = cfg.Logs.MaxBackups
	}
	if cfg.Logs.MaxAgeDays > 0 {
		settings.MaxAgeDays = cfg.Logs.MaxAgeDays
	}
	return settings
}
