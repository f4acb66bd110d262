// Package config loads the runtime configuration of the fernspiel CLI from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FERNSPIEL_"

// Config holds the settings of a running installation.
type Config struct {
	TickInterval   time.Duration `env:"TICK_INTERVAL"    envDefault:"10ms"`
	Addr           string        `env:"ADDR"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB"`
	RedisChannel   string        `env:"REDIS_CHANNEL"    envDefault:"fernspiel:events"`
	Journal        string        `env:"JOURNAL"`
	Debug          bool          `env:"DEBUG"`
	SimPhone       bool          `env:"SIM_PHONE"        envDefault:"true"`
	LineDriver     string        `env:"LINE_DRIVER"`
	Keyboard       bool          `env:"KEYBOARD"`
	Watch          bool          `env:"WATCH"`
	ExitOnTerminal bool          `env:"EXIT_ON_TERMINAL"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be expressed as defaults.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis db must not be negative, got %d", c.RedisDB)
	}
	return nil
}
