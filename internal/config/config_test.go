package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ziggurat.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Cache.Backend != CacheNone {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "0.0.0.0:9000"

[store]
backend = "mongo"
uri = "mongodb://localhost:27017"
database = "pyramids"

[cache]
backend = "redis"
addr = "localhost:6379"
db = 2

[render]
dark = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != StoreMongo || cfg.Store.Database != "pyramids" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if !cfg.Render.Dark {
		t.Error("Render.Dark should be true")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:3000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:3000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q, want default memory", cfg.Store.Backend)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "file"
`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.Backend != StoreFile {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Store.Backend = StoreMongo }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }},
		{"empty listen addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, "[server\naddr=")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}
