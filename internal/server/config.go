// Package server exposes the resize engine over HTTP.
//
// The API is a thin chi router over resize.Engine; all behavior lives in
// the engine so the CLI and the API stay consistent. Configuration comes
// from a TOML file with environment overrides for connection secrets.
package server

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Config
// =============================================================================

// Config is the server configuration, loaded from TOML.
type Config struct {
	Server ServerConfig `toml:"server"`
	Model  ModelConfig  `toml:"model"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ModelConfig configures the vision model. The API key is never read from
// the file; the genai client takes it from GEMINI_API_KEY.
type ModelConfig struct {
	Name     string `toml:"name"`
	Disabled bool   `toml:"disabled"` // run fallback-only, e.g. for load tests
}

// RedisConfig configures the shared cache and assignment store. An empty
// Addr disables redis and uses in-process backends.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures session persistence. An empty URI uses the
// in-memory store.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Mongo:  MongoConfig{Database: "framefit"},
	}
}

// LoadConfig reads a TOML config file and applies environment overrides.
// An empty path returns defaults with overrides applied.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Environment overrides for deployment secrets.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "framefit"
	}
	return cfg, nil
}
