package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration document.
// Zero values mean "unspecified" and are replaced by Defaults/Normalize.
type File struct {
	Service   ServiceConfig    `json:"service" yaml:"service" toml:"service"`
	HTTP      HTTPConfig       `json:"http" yaml:"http" toml:"http"`
	Log       LogConfig        `json:"log" yaml:"log" toml:"log"`
	Providers []ProviderConfig `json:"providers" yaml:"providers" toml:"providers"`
}

// ServiceConfig configures the dispatcher itself.
type ServiceConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins         OriginsConfig `json:"origins" yaml:"origins" toml:"origins"`
	Workers         int           `json:"workers" yaml:"workers" toml:"workers"`
	QueueDepth      int           `json:"queue_depth" yaml:"queue_depth" toml:"queue_depth"`
	Overflow        string        `json:"overflow" yaml:"overflow" toml:"overflow"`
	DeliveryTimeout string        `json:"delivery_timeout" yaml:"delivery_timeout" toml:"delivery_timeout"`
}

// OriginsConfig lists origins whose statements are never dispatched.
type OriginsConfig struct {
	Filter StringList `json:"filter" yaml:"filter" toml:"filter"`
}

// HTTPConfig configures the intake server.
type HTTPConfig struct {
	Addr         string     `json:"addr" yaml:"addr" toml:"addr"`
	MaxBodyBytes int64      `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORS         CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
}

// CORSConfig mirrors the go-chi/cors options exposed to operators.
type CORSConfig struct {
	Enabled bool       `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins StringList `json:"origins" yaml:"origins" toml:"origins"`
	Methods StringList `json:"methods" yaml:"methods" toml:"methods"`
	Headers StringList `json:"headers" yaml:"headers" toml:"headers"`
}

// LogConfig selects the log level and output format (console or json).
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// ProviderConfig describes one provider built at startup.
type ProviderConfig struct {
	ID        string  `json:"id" yaml:"id" toml:"id"`
	Type      string  `json:"type" yaml:"type" toml:"type"`
	Endpoint  string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Username  string  `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password  string  `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" toml:"rate_limit,omitempty"`
	Timeout   string  `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Path      string  `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (File, error) {
	var cfg File
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
