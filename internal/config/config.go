// Package config loads studio.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/roach88/studio/internal/command"
	"github.com/roach88/studio/internal/engine"
	"github.com/roach88/studio/internal/history"
)

// EnvPath overrides the config file location.
const EnvPath = "STUDIO_CONFIG"

// Config holds studio configuration.
type Config struct {
	History HistoryConfig       `toml:"history"`
	Keys    map[string][]string `toml:"keys"`
	Log     LogConfig           `toml:"log"`
}

// HistoryConfig controls the undo history.
type HistoryConfig struct {
	MaxSize    int `toml:"max_size"`
	DebounceMS int `toml:"debounce_ms"`
	SettleMS   int `toml:"settle_ms"`
}

// LogConfig controls the slog handler the CLI installs.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text", "json"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			MaxSize:    history.DefaultMaxSize,
			DebounceMS: int(engine.DefaultDebounce / time.Millisecond),
			SettleMS:   int(engine.DefaultSettleDelay / time.Millisecond),
		},
		Keys: map[string][]string{},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the studio config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studio")
}

// Path returns $STUDIO_CONFIG or studio.toml in Dir.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "studio.toml")
}

// Load reads path over the defaults. A missing file yields the defaults;
// a malformed or invalid one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and that the key overrides form a valid keymap.
func (c *Config) Validate() error {
	if c.History.MaxSize < 1 {
		return fmt.Errorf("history.max_size must be at least 1, got %d", c.History.MaxSize)
	}
	if c.History.DebounceMS < 0 {
		return fmt.Errorf("history.debounce_ms must not be negative, got %d", c.History.DebounceMS)
	}
	if c.History.SettleMS < 0 {
		return fmt.Errorf("history.settle_ms must not be negative, got %d", c.History.SettleMS)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := c.Keymap(); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	return nil
}

// Debounce returns the capture debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.History.DebounceMS) * time.Millisecond
}

// Settle returns the post-restore settle delay.
func (c *Config) Settle() time.Duration {
	return time.Duration(c.History.SettleMS) * time.Millisecond
}

// Keymap returns the default keymap with [keys] applied.
func (c *Config) Keymap() (*command.Keymap, error) {
	return command.WithOverrides(c.Keys)
}

// EngineOptions returns the engine options this config selects.
func (c *Config) EngineOptions() []engine.EngineOption {
	return []engine.EngineOption{
		engine.WithMaxHistory(c.History.MaxSize),
		engine.WithDebounce(c.Debounce()),
		engine.WithSettleDelay(c.Settle()),
	}
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
