package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const defaultServerURL = "http://localhost:8080"

// Config holds the client settings after all sources are merged.
// Priority order: defaults, config file, environment, flags.
type Config struct {
	ServerURL string `toml:"server_url"`
	CachePath string `toml:"cache_path"`
	Offline   bool   `toml:"-"`
}

// LoadConfig merges the config file, environment and root flags.
func LoadConfig(opts *RootOptions) (*Config, error) {
	cfg := &Config{ServerURL: defaultServerURL}

	path := configFilePath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read config file "+path, err)
		}
	}

	if v := os.Getenv("TODOSYNC_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TODOSYNC_CACHE"); v != "" {
		cfg.CachePath = v
	}

	// Flags override everything.
	if opts.Server != "" {
		cfg.ServerURL = opts.Server
	}
	if opts.Cache != "" {
		cfg.CachePath = opts.Cache
	}
	cfg.Offline = opts.Offline

	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(xdg.DataHome, "todosync", "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create cache directory", err)
	}

	return cfg, nil
}

// configFilePath returns the TOML config location. TODOSYNC_CONFIG
// overrides the XDG default.
func configFilePath() string {
	if v := os.Getenv("TODOSYNC_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, "todosync", "config.toml")
}
