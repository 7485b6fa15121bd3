// Package config loads and saves the seqstk CLI's settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the settings a host driver needs to run a seqstk image: how
// long to run it, at what PC, and how much it should say about what it's
// doing. It has nothing to do with the machine's own state — Machine never
// reads a Config.
type Config struct {
	Run struct {
		EntryPoint  int32  `toml:"entry_point"`
		MaxCycles   uint64 `toml:"max_cycles"`
		TraceLevel  string `toml:"trace_level"` // off, cycle, stack
		HaltOnIdle  bool   `toml:"halt_on_idle"`
	} `toml:"run"`

	Metrics struct {
		Enabled    bool   `toml:"enabled"`
		ListenAddr string `toml:"listen_addr"`
	} `toml:"metrics"`

	Logging struct {
		Level string `toml:"level"` // debug, info, warn, error
		JSON  bool   `toml:"json"`
	} `toml:"logging"`
}

// DefaultConfig returns the settings a freshly installed CLI starts with.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Run.EntryPoint = 0
	cfg.Run.MaxCycles = 10_000_000
	cfg.Run.TraceLevel = "off"
	cfg.Run.HaltOnIdle = true

	cfg.Metrics.Enabled = false
	cfg.Metrics.ListenAddr = "127.0.0.1:9090"

	cfg.Logging.Level = "info"
	cfg.Logging.JSON = false

	return cfg
}

// configDir returns the platform-specific directory seqstk keeps its
// config file in.
func configDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(dir, "seqstk"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "seqstk"), nil
	}
}

// DefaultConfigPath returns where Load reads from and Save writes to when
// no explicit path is given.
func DefaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return "seqstk.toml"
	}
	return filepath.Join(dir, "seqstk.toml")
}

// Load reads a config file, falling back to DefaultConfig if it doesn't
// exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path, creating any missing parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
