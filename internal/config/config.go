// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads process configuration from an optional YAML file with
// command-line flag overrides.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// Config is the full process configuration. Flag names are the koanf paths
// themselves ("database-url", "prune.interval", "auth.abuse-window").
type Config struct {
	DatabaseURL string     `koanf:"database-url"`
	MetricsAddr string     `koanf:"metrics-addr"`
	LogFormat   string     `koanf:"log-format"`
	Prune       Prune      `koanf:"prune"`
	Auth        AuthPolicy `koanf:"auth"`
}

// Prune configures retention pruning in the serve loop.
type Prune struct {
	Interval  time.Duration `koanf:"interval"`
	Retention time.Duration `koanf:"retention"`
}

// AuthPolicy mirrors auth.Config for file/flag loading.
type AuthPolicy struct {
	AbuseWindow            time.Duration `koanf:"abuse-window"`
	MaxAttemptsPerPair     int64         `koanf:"max-attempts-per-pair"`
	MaxAttemptsPerIP       int64         `koanf:"max-attempts-per-ip"`
	MaxAttemptsPerUsername int64         `koanf:"max-attempts-per-username"`
	ResetWindow            time.Duration `koanf:"reset-window"`
}

// AuthConfig converts the loaded policy into an auth.Config. Zero fields
// fall back to the auth defaults.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		AbuseWindow:            c.Auth.AbuseWindow,
		MaxAttemptsPerPair:     c.Auth.MaxAttemptsPerPair,
		MaxAttemptsPerIP:       c.Auth.MaxAttemptsPerIP,
		MaxAttemptsPerUsername: c.Auth.MaxAttemptsPerUsername,
		ResetWindow:            c.Auth.ResetWindow,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database-url is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("log_format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text'")
	}
	// A non-positive interval would panic time.NewTicker in the serve loop.
	if c.Prune.Interval <= 0 {
		return oops.Code("CONFIG_INVALID").With("prune_interval", c.Prune.Interval.String()).
			Errorf("prune.interval must be positive")
	}
	if c.Prune.Retention <= 0 {
		return oops.Code("CONFIG_INVALID").With("prune_retention", c.Prune.Retention.String()).
			Errorf("prune.retention must be positive")
	}
	return nil
}

// Default values for process configuration.
const (
	DefaultMetricsAddr   = "127.0.0.1:9100"
	DefaultLogFormat     = "json"
	DefaultPruneInterval = time.Hour
	DefaultRetention     = 30 * 24 * time.Hour
)

// Load builds a Config from, in increasing precedence: defaults, the YAML
// file at path (skipped when path is empty), and set command-line flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		MetricsAddr: DefaultMetricsAddr,
		LogFormat:   DefaultLogFormat,
		Prune: Prune{
			Interval:  DefaultPruneInterval,
			Retention: DefaultRetention,
		},
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal").
			Wrap(err)
	}

	return cfg, nil
}
