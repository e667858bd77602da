// Package config loads the server configuration.
//
// Values come from three places, later ones winning:
//  1. Defaults()
//  2. an optional YAML file (CONFIG_PATH, default "config.yaml")
//  3. environment variables (PORT, SANITY_TOKEN, ...)
//
// Secrets such as the Sanity token are best left to the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendSanity = "sanity"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Sanity SanityConfig `yaml:"sanity"`
	Store  StoreConfig  `yaml:"store"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SanityConfig identifies the content store project.
type SanityConfig struct {
	ProjectID  string        `yaml:"project_id"`
	Dataset    string        `yaml:"dataset"`
	APIVersion string        `yaml:"api_version"`
	UseCDN     bool          `yaml:"use_cdn"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	BaseURL    string        `yaml:"base_url"` // optional, e.g. a proxy in front of the API
}

// StoreConfig selects the repository backend.
type StoreConfig struct {
	Backend    string `yaml:"backend"`     // sanity or sqlite
	SQLitePath string `yaml:"sqlite_path"` // sqlite only
	Fixtures   string `yaml:"fixtures"`    // sqlite only: YAML fixture file loaded at startup

	QueryTimeout time.Duration `yaml:"query_timeout"` // sqlite only: bound per repository call
}

// CacheConfig configures the feed-page cache. An empty RedisAddr disables it.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Sanity: SanityConfig{
			Dataset:    "production",
			APIVersion: "2024-01-01",
			UseCDN:     true,
			Timeout:    10 * time.Second,
		},
		Store: StoreConfig{
			Backend:      BackendSanity,
			SQLitePath:   "data/tweetfeed.db",
			QueryTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{TTL: 30 * time.Second},
	}
}

// Load reads the YAML file at path on top of Defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults + env only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		c.Server.Port = port
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("SANITY_PROJECT_ID", &c.Sanity.ProjectID)
	str("SANITY_DATASET", &c.Sanity.Dataset)
	str("SANITY_API_VERSION", &c.Sanity.APIVersion)
	str("SANITY_TOKEN", &c.Sanity.Token)
	str("STORE_BACKEND", &c.Store.Backend)
	str("SQLITE_PATH", &c.Store.SQLitePath)
	str("STORE_FIXTURES", &c.Store.Fixtures)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Store.Backend {
	case BackendSanity:
		if c.Sanity.ProjectID == "" {
			return errors.New("sanity.project_id is required for the sanity backend")
		}
		if c.Sanity.Dataset == "" {
			return errors.New("sanity.dataset is required for the sanity backend")
		}
		if c.Sanity.Timeout <= 0 {
			return errors.New("sanity.timeout must be positive")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite backend")
		}
		if c.Store.QueryTimeout <= 0 {
			return errors.New("store.query_timeout must be positive")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendSanity, BackendSQLite, c.Store.Backend)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
