package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DriverConfig describes the external program that talks to the phone hardware.
type DriverConfig struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
}

// LoadDriver reads a driver configuration file (YAML or JSON).
func LoadDriver(path string) (DriverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DriverConfig{}, fmt.Errorf("failed to read driver config: %w", err)
	}

	var cfg DriverConfig
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DriverConfig{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DriverConfig{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if cfg.Command == "" {
		return DriverConfig{}, fmt.Errorf("driver config %s: command is required", filepath.Base(path))
	}
	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return cfg, nil
}
