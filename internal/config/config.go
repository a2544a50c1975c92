// Package config holds the orchestrator server's startup parameters,
// following the DefaultConfig/Merge/LoadConfig shape used for subsystem
// configuration elsewhere in the pack: defaults first, then an optional file
// overlaid on top field-by-field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultBind = "127.0.0.1"
	defaultPort = 3000
)

// Config holds the serve command's startup parameters.
type Config struct {
	Bind string `yaml:"bind,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// DefaultConfig returns the built-in bind address and port.
func DefaultConfig() Config {
	return Config{Bind: defaultBind, Port: defaultPort}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Bind != "" {
		c.Bind = source.Bind
	}
	if source.Port > 0 {
		c.Port = source.Port
	}
}

// LoadConfig reads a YAML config file, merges it with defaults, and returns
// the resulting Config. A missing file is not an error: the defaults are
// returned unchanged.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	cfg.Merge(&loaded)
	return cfg, nil
}

// Addr returns the bind:port string suitable for http.Server.Addr.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
