package main

import (
	"github.com/aretw0/fernspiel/internal/config"
	"github.com/spf13/pflag"
)

// addRunFlags registers the flags that override environment configuration.
func addRunFlags(f *pflag.FlagSet) {
	f.String("addr", "", "Listen address of the HTTP event server and control API (e.g. :8080)")
	f.String("journal", "", "Path of the SQLite call journal")
	f.String("redis", "", "Redis address to publish state events to")
	f.String("redis-channel", "", "Redis channel for state events")
	f.Duration("tick", 0, "Tick interval of the session loop")
	f.Bool("watch", false, "Reload the book when its file changes")
	f.Bool("exit-on-terminal", false, "Exit once the book reaches a terminal state")
	f.Bool("sim-phone", true, "Attach the simulated phone line")
	f.String("line-driver", "", "Driver config (YAML or JSON) of the program connected to the phone hardware")
	f.Bool("debug", false, "Enable debug logging")
	f.BoolP("keyboard", "k", false, "Dial from the keyboard: 0-9 dial, p picks up, h hangs up")
}

// loadConfig reads the environment and applies the flags that were set explicitly.
func loadConfig(f *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}

	str("addr", &cfg.Addr)
	str("journal", &cfg.Journal)
	str("redis", &cfg.RedisAddr)
	str("redis-channel", &cfg.RedisChannel)
	str("line-driver", &cfg.LineDriver)
	if f.Changed("tick") {
		cfg.TickInterval, _ = f.GetDuration("tick")
	}
	boolean("watch", &cfg.Watch)
	boolean("exit-on-terminal", &cfg.ExitOnTerminal)
	boolean("sim-phone", &cfg.SimPhone)
	boolean("debug", &cfg.Debug)
	boolean("keyboard", &cfg.Keyboard)

	return cfg, cfg.Validate()
}
