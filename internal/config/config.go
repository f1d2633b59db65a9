// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package config loads server configuration from flag defaults, an optional
// YAML file, and explicitly set command-line flags, in that order of
// precedence.
package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/lireddit/lireddit/internal/auth"
	"github.com/lireddit/lireddit/internal/logging"
	"github.com/lireddit/lireddit/internal/xdg"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default values.
const (
	DefaultHTTPAddr    = ":4000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultCORSOrigin  = "http://localhost:3000"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// DatabaseURLEnv is consulted when database_url is not configured.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the server configuration.
type Config struct {
	HTTPAddr      string        `koanf:"http_addr"`
	MetricsAddr   string        `koanf:"metrics_addr"`
	DatabaseURL   string        `koanf:"database_url"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	Env           string        `koanf:"env"`
	CORSOrigin    string        `koanf:"cors_origin"`
	LogFormat     string        `koanf:"log_format"`
	LogLevel      string        `koanf:"log_level"`
	HashWorkers   int           `koanf:"hash_workers"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	AutoMigrate   bool          `koanf:"auto_migrate"`
}

// RegisterFlags adds one flag per configuration key to fs. Flag names use
// hyphens where keys use underscores. The flag defaults are the
// configuration defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "API listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", "", "PostgreSQL URL (default: $"+DatabaseURLEnv+")")
	fs.String("redis-addr", "", "Redis address for sessions (empty = in-process store)")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.String("env", EnvDevelopment, "deployment environment (development or production)")
	fs.String("cors-origin", DefaultCORSOrigin, "allowed CORS origin")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "minimum log level (debug, info, warn, error)")
	fs.Int("hash-workers", 0, "concurrent password hashing workers (0 = GOMAXPROCS/2)")
	fs.Duration("session-ttl", auth.DefaultSessionTTL, "session lifetime")
	fs.Bool("auto-migrate", true, "apply database migrations on startup")
}

// ResolvePath returns path when set. Otherwise it returns the XDG default
// config file if one exists, or "" to run on flags alone.
func ResolvePath(path string, getenv func(string) string) (string, error) {
	if path != "" || getenv == nil {
		return path, nil
	}
	candidate := xdg.ConfigFile(getenv)
	if candidate == "" {
		return "", nil
	}
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", candidate).Wrap(err)
	}
	return candidate, nil
}

// Load builds a Config. path names an optional YAML file. fs must have been
// populated by RegisterFlags and parsed. getenv supplies DATABASE_URL when
// no database URL is configured; nil disables the fallback.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	// Unchanged flags only fill keys the file left unset.
	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := knownKeys[key]; !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if cfg.DatabaseURL == "" && getenv != nil {
		cfg.DatabaseURL = getenv(DatabaseURLEnv)
	}

	return &cfg, nil
}

var knownKeys = map[string]struct{}{
	"http_addr": {}, "metrics_addr": {}, "database_url": {},
	"redis_addr": {}, "redis_password": {}, "redis_db": {},
	"env": {}, "cors_origin": {}, "log_format": {}, "log_level": {},
	"hash_workers": {}, "session_ttl": {}, "auto_migrate": {},
}

// Validate checks that the configuration is usable by the server.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http_addr").Errorf("http_addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database_url").
			Errorf("database_url or %s is required", DatabaseURLEnv)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return oops.Code("CONFIG_INVALID").With("key", "env").
			Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("key", "log_format").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CORSOrigin != "" {
		u, err := url.Parse(c.CORSOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return oops.Code("CONFIG_INVALID").With("key", "cors_origin").
				Errorf("cors_origin must be an absolute origin, got %q", c.CORSOrigin)
		}
	}
	if c.HashWorkers < 0 {
		return oops.Code("CONFIG_INVALID").With("key", "hash_workers").Errorf("hash_workers cannot be negative")
	}
	if c.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "session_ttl").Errorf("session_ttl must be positive")
	}
	if c.RedisDB < 0 {
		return oops.Code("CONFIG_INVALID").With("key", "redis_db").Errorf("redis_db cannot be negative")
	}
	return nil
}

// Production reports whether the server runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}
