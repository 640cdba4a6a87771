package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/graphwire/pkg/store"
)

// Config is the contents of the configuration file. Command-line flags
// override every setting.
//
//	schemas = ["schemas/library.yaml"]
//
//	[encode]
//	version = "VERSION_1_1"
//	style = "binary-enumerator"
//	backend = "segment"
//
//	[store]
//	backend = "redis"
//	compress = true
//	ttl = "720h"
//
//	[store.redis]
//	addr = "localhost:6379"
type Config struct {
	Schemas []string     `toml:"schemas"`
	Encode  EncodeConfig `toml:"encode"`
	Store   store.Config `toml:"store"`
}

// EncodeConfig holds codec defaults.
type EncodeConfig struct {
	Version string `toml:"version"`
	Style   string `toml:"style"`
	Backend string `toml:"backend"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	dir, err := cacheDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), appName)
	}
	return Config{Store: store.DefaultConfig(filepath.Join(dir, "store"))}
}

// loadConfig reads the configuration file at path on top of the defaults.
// An empty path means the default location; a missing default file is not an
// error, a missing explicit one is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	// Relative paths in the file are relative to the file.
	base := filepath.Dir(path)
	for i, s := range cfg.Schemas {
		if !filepath.IsAbs(s) {
			cfg.Schemas[i] = filepath.Join(base, s)
		}
	}
	if cfg.Store.Dir != "" && !filepath.IsAbs(cfg.Store.Dir) {
		cfg.Store.Dir = filepath.Join(base, cfg.Store.Dir)
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the configuration directory using XDG standard (~/.config/graphwire/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/graphwire/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
