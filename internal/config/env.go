package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds the process-level overrides read from the environment.
type Env struct {
	ConfigPath   string `env:"LRSD_CONFIG"`
	Addr         string `env:"LRSD_ADDR"`
	LogLevel     string `env:"LRSD_LOG_LEVEL"`
	LogFormat    string `env:"LRSD_LOG_FORMAT"`
	OTelEndpoint string `env:"LRSD_OTEL_ENDPOINT"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overrides the file values the environment sets.
func (e Env) Apply(f *File) {
	if v := strings.TrimSpace(e.Addr); v != "" {
		f.HTTP.Addr = v
	}
	if v := strings.TrimSpace(e.LogLevel); v != "" {
		f.Log.Level = v
	}
	if v := strings.TrimSpace(e.LogFormat); v != "" {
		f.Log.Format = v
	}
}
