// Package config loads the promopress configuration from a TOML file.
// Defaults are defined in code; a config file overrides them and flags
// override the file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/export"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Canvas CanvasConfig `toml:"canvas"`
	Export ExportConfig `toml:"export"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	CompanyName string `toml:"company_name"`
}

// StoreConfig selects and configures the catalog persistence backend.
type StoreConfig struct {
	Backend  string `toml:"backend"` // "file" or "mongo"
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// CacheConfig selects and configures the pipeline cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", or "none"
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// CanvasConfig sets the page canvas dimensions.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ExportConfig sets export defaults.
type ExportConfig struct {
	Format string  `toml:"format"`
	Scale  float64 `toml:"scale"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Backend: "file",
			Dir:     "data",
			MongoDB: "promopress",
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		Canvas: CanvasConfig{
			Width:  board.DefaultCanvasWidth,
			Height: board.DefaultCanvasHeight,
		},
		Export: ExportConfig{
			Format: string(export.FormatPNG),
			Scale:  2,
		},
	}
}

// Load reads a TOML config file on top of the defaults. An empty path
// returns the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo needs mongo_uri")
	}

	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return err
	}
	if c.Export.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "export scale must be positive")
	}
	return nil
}

// DataDir resolves the store directory relative to a base directory when it
// is not absolute.
func (c Config) DataDir(base string) string {
	if filepath.IsAbs(c.Store.Dir) {
		return c.Store.Dir
	}
	return filepath.Join(base, c.Store.Dir)
}
