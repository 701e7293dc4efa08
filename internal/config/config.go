// Package config loads the ticker configuration from built-in defaults,
// an optional TOML file and TICK_ prefixed environment variables,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "TICK_"

// Config is the ticker configuration.
type Config struct {
	Interval    time.Duration `koanf:"interval"`
	Message     string        `koanf:"message"`
	Pairs       []Pair        `koanf:"pairs"`
	MetricsAddr string        `koanf:"metrics_addr"`
}

// Pair is the data captured by one registered print action.
type Pair struct {
	First  int `koanf:"first"`
	Second int `koanf:"second"`
}

var ErrInvalid = errors.New("invalid configuration")

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"interval":     "100ms",
		"message":      "Halo1",
		"metrics_addr": "",
		"pairs": []interface{}{
			map[string]interface{}{"first": 1, "second": 2},
		},
	}
}

// Load reads the configuration.
// path is optional; an empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the ticker can't run with.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalid, c.Interval)
	}
	return nil
}
