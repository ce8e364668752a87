// Package config loads the preprocessing server configuration.
//
// Configuration comes from an optional TOML file, then environment
// overrides. Every field has a usable default, so a missing file is not
// an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override file values.
const (
	EnvLogLevel = "IMAGE_PREPROCESS_LOG_LEVEL"
	EnvCacheDir = "IMAGE_PREPROCESS_CACHE_DIR"
	EnvAppsDir  = "IMAGE_PREPROCESS_APPS_DIR"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`

	Cache CacheConfig `toml:"cache"`
	Apps  AppsConfig  `toml:"apps"`
}

// CacheConfig configures the icon artifact cache.
type CacheConfig struct {
	// Dir holds extracted icon artifacts. "~" expands to the home directory.
	Dir string `toml:"dir"`

	// MemoryEntries bounds the in-memory LRU of encoded icons.
	MemoryEntries int `toml:"memory_entries"`

	// IconMaxSize is the maximum edge, in pixels, of a normalized icon.
	// Larger icons are scaled down; smaller ones are kept as is.
	IconMaxSize int `toml:"icon_max_size"`
}

// AppsConfig configures the installed application registry.
type AppsConfig struct {
	// Dir is scanned for installed package archives. Empty disables
	// installed-app lookups.
	Dir string `toml:"dir"`

	// Watch rescans Dir when its contents change.
	Watch bool `toml:"watch"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	cacheDir := filepath.Join(os.TempDir(), "image-preprocess")
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "image-preprocess")
	}
	return Config{
		LogLevel: "info",
		Cache: CacheConfig{
			Dir:           cacheDir,
			MemoryEntries: 128,
			IconMaxSize:   192,
		},
		Apps: AppsConfig{
			Watch: true,
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result. A path that does not exist yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Apps.Dir = expandHome(cfg.Apps.Dir)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.Cache.Dir == "" {
		return errors.New("config: cache.dir must not be empty")
	}
	if c.Cache.MemoryEntries <= 0 {
		return errors.New("config: cache.memory_entries must be positive")
	}
	if c.Cache.IconMaxSize <= 0 {
		return errors.New("config: cache.icon_max_size must be positive")
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(EnvAppsDir); v != "" {
		c.Apps.Dir = v
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
