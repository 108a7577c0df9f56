package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. LLMLAUNCHER_ADDR.
const EnvPrefix = "LLMLAUNCHER_"

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds runtime parameters for the CLI and the server.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	FamiliesDir string `json:"families_dir" yaml:"families_dir" toml:"families_dir" env:"FAMILIES_DIR"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	Version     string `json:"-" yaml:"-" toml:"-" env:"VERSION"`

	// Instance store persistence.
	Store         string `json:"store" yaml:"store" toml:"store" env:"STORE"`
	StorePath     string `json:"store_path" yaml:"store_path" toml:"store_path" env:"STORE_PATH"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db" env:"REDIS_DB"`
	RedisKey      string `json:"redis_key" yaml:"redis_key" toml:"redis_key" env:"REDIS_KEY"`

	// Dispatch.
	Concurrency           int `json:"concurrency" yaml:"concurrency" toml:"concurrency" env:"CONCURRENCY"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`

	// HTTP server.
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	CORSEnabled  bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" env:"CORS_ENABLED"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"CORS_ORIGINS"`
	CORSMethods  []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods" env:"CORS_METHODS"`
	CORSHeaders  []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers" env:"CORS_HEADERS"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		FamiliesDir:  "families",
		LogLevel:     "info",
		Version:      "development",
		Store:        StoreFile,
		StorePath:    "~/.config/llmlauncher/instances.json",
		RedisAddr:    "localhost:6379",
		RedisKey:     "llmlauncher/instances",
		Concurrency:  6,
		MaxBodyBytes: 1 << 20,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	if err := decodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Resolve layers defaults, the optional file at path, and LLMLAUNCHER_*
// environment variables, in that order. Keys absent from the file keep their
// defaults.
func Resolve(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unsupported store %q (want file|redis|memory)", c.Store)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must be >= 0")
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	case ".json":
		return json.Unmarshal(b, cfg)
	case ".toml":
		return toml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}
