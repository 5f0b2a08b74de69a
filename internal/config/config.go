// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

// Package config loads process-wide configuration. Precedence, lowest to
// highest: built-in defaults, YAML config file, command-line flags, with the
// DATABASE_URL and RBAC_TOKEN_SECRET environment variables overriding the
// matching keys so secrets can stay out of files and argv.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultListenAddr  = ":7002"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"

	DefaultTokenTTL            = time.Hour
	DefaultThrottleWindow      = 15 * time.Minute
	DefaultThrottleMaxAttempts = 5
)

// Config is the immutable process configuration. It is constructed once at
// startup and passed into components explicitly; nothing reads it as a
// global. TokenSecret is deliberately excluded from any String/log output.
type Config struct {
	ListenAddr  string `koanf:"listen_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`

	TokenSecret string        `koanf:"token_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`

	ThrottleWindow      time.Duration `koanf:"throttle_window"`
	ThrottleMaxAttempts int           `koanf:"throttle_max_attempts"`
}

// Load builds a Config from the optional YAML file at path and the given
// flag set. flags may be nil when no CLI flags apply.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flags override the file; unchanged flags contribute their
		// defaults only for keys the file did not set.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := &Config{
		ListenAddr:          DefaultListenAddr,
		MetricsAddr:         DefaultMetricsAddr,
		LogFormat:           DefaultLogFormat,
		TokenTTL:            DefaultTokenTTL,
		ThrottleWindow:      DefaultThrottleWindow,
		ThrottleMaxAttempts: DefaultThrottleMaxAttempts,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal").
			Wrap(err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("RBAC_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}

	return cfg, nil
}

// Validate checks the invariants a running server depends on. A missing
// signing secret is a fatal integrity problem, not a client error.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token signing secret is required (set token_secret or RBAC_TOKEN_SECRET)")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set database_url or DATABASE_URL)")
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token TTL must be positive")
	}
	if c.ThrottleWindow <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("throttle window must be positive")
	}
	if c.ThrottleMaxAttempts <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("throttle max attempts must be positive")
	}
	return nil
}
