package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for fields left empty in the file.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultOverflow     = "reject-new"
)

// Provider types understood by the catalog.
const (
	ProviderLog    = "log"
	ProviderHTTP   = "http"
	ProviderSQLite = "sqlite"
)

// Default returns a document with every default applied and the service
// disabled.
func Default() File {
	var f File
	f.Normalize()
	return f
}

// Normalize fills empty fields with defaults and trims list entries.
// Worker and queue sizes are left at zero so the dispatcher picks its own.
func (f *File) Normalize() {
	if f.HTTP.Addr == "" {
		f.HTTP.Addr = DefaultAddr
	}
	if f.HTTP.MaxBodyBytes <= 0 {
		f.HTTP.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if f.Log.Level == "" {
		f.Log.Level = DefaultLogLevel
	}
	if f.Log.Format == "" {
		f.Log.Format = DefaultLogFormat
	}
	if f.Service.Overflow == "" {
		f.Service.Overflow = DefaultOverflow
	}
	f.Service.Origins.Filter = f.Service.Origins.Filter.normalize()
	f.HTTP.CORS.Origins = f.HTTP.CORS.Origins.normalize()
	f.HTTP.CORS.Methods = f.HTTP.CORS.Methods.normalize()
	f.HTTP.CORS.Headers = f.HTTP.CORS.Headers.normalize()
	for i := range f.Providers {
		p := &f.Providers[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	}
}

// Validate reports every problem in the document at once.
func (f File) Validate() error {
	var errs []error
	if f.Service.Workers < 0 {
		errs = append(errs, fmt.Errorf("service.workers must not be negative"))
	}
	if f.Service.QueueDepth < 0 {
		errs = append(errs, fmt.Errorf("service.queue_depth must not be negative"))
	}
	switch strings.ToLower(strings.TrimSpace(f.Service.Overflow)) {
	case "", "reject-new", "drop-oldest":
	default:
		errs = append(errs, fmt.Errorf("service.overflow: unknown policy %q", f.Service.Overflow))
	}
	if _, err := f.Service.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if lvl := strings.TrimSpace(f.Log.Level); lvl != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(lvl)); err != nil {
			errs = append(errs, fmt.Errorf("log.level: unknown level %q", f.Log.Level))
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.Log.Format)) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: want console or json, got %q", f.Log.Format))
	}
	seen := map[string]bool{}
	for i, p := range f.Providers {
		id := strings.TrimSpace(p.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("providers[%d]: id is required", i))
		case seen[id]:
			errs = append(errs, fmt.Errorf("providers[%d]: duplicate id %q", i, id))
		}
		seen[id] = true
		switch strings.ToLower(strings.TrimSpace(p.Type)) {
		case ProviderLog:
		case ProviderHTTP:
			if strings.TrimSpace(p.Endpoint) == "" {
				errs = append(errs, fmt.Errorf("providers[%d] %s: endpoint is required", i, id))
			}
		case ProviderSQLite:
			if strings.TrimSpace(p.Path) == "" {
				errs = append(errs, fmt.Errorf("providers[%d] %s: path is required", i, id))
			}
		default:
			errs = append(errs, fmt.Errorf("providers[%d] %s: unknown type %q", i, id, p.Type))
		}
		if p.RateLimit < 0 {
			errs = append(errs, fmt.Errorf("providers[%d] %s: rate_limit must not be negative", i, id))
		}
		if _, err := p.TimeoutDuration(); err != nil {
			errs = append(errs, fmt.Errorf("providers[%d] %s: %w", i, id, err))
		}
	}
	return errors.Join(errs...)
}

// Timeout parses delivery_timeout. Empty means no deadline.
func (s ServiceConfig) Timeout() (time.Duration, error) {
	return parseDuration("service.delivery_timeout", s.DeliveryTimeout)
}

// TimeoutDuration parses the provider timeout. Empty means the provider default.
func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", p.Timeout)
}

func parseDuration(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
