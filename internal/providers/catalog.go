package providers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"lrsd/internal/config"
	"lrsd/internal/dispatch"
)

// Catalog is the set of providers built from configuration. It is the
// daemon's discovery source.
type Catalog struct {
	providers []dispatch.Provider
	closers   []io.Closer
}

var _ dispatch.ProviderSource = (*Catalog)(nil)

// Build constructs every configured provider. On error, providers built so
// far are closed.
func Build(cfgs []config.ProviderConfig, log zerolog.Logger) (*Catalog, error) {
	c := &Catalog{}
	for i, pc := range cfgs {
		p, err := build(pc, log)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		c.providers = append(c.providers, p)
		if cl, ok := p.(io.Closer); ok {
			c.closers = append(c.closers, cl)
		}
	}
	return c, nil
}

func build(pc config.ProviderConfig, log zerolog.Logger) (dispatch.Provider, error) {
	id := strings.TrimSpace(pc.ID)
	if id == "" {
		return nil, fmt.Errorf("provider id is required")
	}
	switch strings.ToLower(strings.TrimSpace(pc.Type)) {
	case config.ProviderLog:
		return NewLogProvider(id, log), nil
	case config.ProviderHTTP:
		timeout, err := pc.TimeoutDuration()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		p, err := NewHTTPProvider(id, HTTPOptions{
			Endpoint:  pc.Endpoint,
			Username:  pc.Username,
			Password:  pc.Password,
			RateLimit: pc.RateLimit,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderSQLite:
		p, err := OpenSQLiteProvider(id, pc.Path)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%s: unknown provider type %q", id, pc.Type)
	}
}

// ListProviders returns the built providers.
func (c *Catalog) ListProviders() ([]dispatch.Provider, error) {
	out := make([]dispatch.Provider, len(c.providers))
	copy(out, c.providers)
	return out, nil
}

// Len returns the number of built providers.
func (c *Catalog) Len() int { return len(c.providers) }

// Close releases providers that hold resources.
func (c *Catalog) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
