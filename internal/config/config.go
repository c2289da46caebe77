// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the settings of the asynchttp commands from
// defaults, an optional .env file, environment variables, and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, for
// example ASYNCHTTP_WORKERS.
const EnvPrefix = "ASYNCHTTP"

// Transport names accepted by the transport setting.
const (
	TransportHTTP  = "http"
	TransportResty = "resty"
)

// Config holds the settings of an asynchttp command.
type Config struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	TimeoutMS int64         `mapstructure:"timeout_ms"`
	Timeout   time.Duration `mapstructure:"-"`
	Transport string        `mapstructure:"transport"`
	HTTP2     bool          `mapstructure:"http2"`
	LogLevel  string        `mapstructure:"log_level"`
	UserAgent string        `mapstructure:"user_agent"`
}

// New returns a viper instance holding the defaults and reading
// prefixed environment variables. Flags may be bound to it before
// calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("workers", 8)
	v.SetDefault("queue_size", 64)
	v.SetDefault("timeout_ms", 30000)
	v.SetDefault("transport", TransportHTTP)
	v.SetDefault("http2", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("user_agent", "asynchttp")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from v. If envFile is not empty, the
// variables it defines are loaded into the environment first, without
// overriding variables already set. A missing envFile is not an error.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("invalid workers (must be positive)")
	}
	if cfg.QueueSize < 0 {
		return nil, fmt.Errorf("invalid queue_size (must not be negative)")
	}
	if cfg.TimeoutMS <= 0 {
		return nil, fmt.Errorf("invalid timeout_ms (must be positive milliseconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond

	cfg.Transport = strings.ToLower(cfg.Transport)
	switch cfg.Transport {
	case TransportHTTP, TransportResty:
	default:
		return nil, fmt.Errorf("invalid transport %q (must be %q or %q)", cfg.Transport, TransportHTTP, TransportResty)
	}

	return &cfg, nil
}
