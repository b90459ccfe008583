// Package config loads server configuration from TOML files.
//
// The serve command reads a config file selected by --config or the
// ZIGGURAT_CONFIG environment variable. Missing fields fall back to
// defaults suitable for local development (memory store, no cache).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "ZIGGURAT_CONFIG"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (host:port).
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the history backend.
type StoreConfig struct {
	// Backend is one of: memory, file, mongo.
	Backend string `toml:"backend"`

	// URI is the mongodb connection string (mongo backend).
	URI string `toml:"uri"`

	// Database is the mongodb database name (mongo backend).
	Database string `toml:"database"`

	// Collection is the mongodb collection name (mongo backend).
	Collection string `toml:"collection"`

	// Dir is the record directory (file backend; empty means the XDG
	// data directory).
	Dir string `toml:"dir"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	// Backend is one of: none, file, redis.
	Backend string `toml:"backend"`

	// Dir is the cache directory (file backend; empty means the XDG
	// cache directory).
	Dir string `toml:"dir"`

	// Addr is the redis address (redis backend).
	Addr string `toml:"addr"`

	// Password is the redis password (redis backend, optional).
	Password string `toml:"password"`

	// DB is the redis database number (redis backend).
	DB int `toml:"db"`
}

// RenderConfig holds render defaults applied when a request omits them.
type RenderConfig struct {
	// Dark makes the dark background gradient the default theme.
	Dark bool `toml:"dark"`
}

// Default returns the configuration used when no file is provided:
// a local listener with an in-memory store and caching disabled.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Store:  StoreConfig{Backend: StoreMemory},
		Cache:  CacheConfig{Backend: CacheNone},
	}
}

// Load reads the TOML file at path on top of the defaults.
// If path is empty, the ZIGGURAT_CONFIG environment variable is
// consulted; if that is empty too, defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and their required fields.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid store backend: %q (must be one of: %s)", c.Store.Backend,
			fmt.Sprintf("%s, %s, %s", StoreMemory, StoreFile, StoreMongo))
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: %s)", c.Cache.Backend,
			fmt.Sprintf("%s, %s, %s", CacheNone, CacheFile, CacheRedis))
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}
