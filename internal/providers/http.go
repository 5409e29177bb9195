package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"lrsd/pkg/types"
)

const (
	// XAPIVersion is sent with every request as X-Experience-API-Version.
	XAPIVersion = "1.0.3"

	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("lrs responded %d", e.StatusCode)
	}
	return fmt.Sprintf("lrs responded %d: %s", e.StatusCode, e.Body)
}

// HTTPOptions configures an HTTPProvider.
type HTTPOptions struct {
	Endpoint string
	Username string
	Password string
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
	// Timeout bounds each request. Zero selects a 10s default.
	Timeout time.Duration
	// Client overrides the HTTP client; its Timeout is left alone.
	Client *http.Client
}

// HTTPProvider forwards statements to a remote learning record store.
type HTTPProvider struct {
	id      string
	opts    HTTPOptions
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPProvider(id string, opts HTTPOptions) (*HTTPProvider, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("http provider %s: endpoint is required", id)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	p := &HTTPProvider{id: id, opts: opts, client: client}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return p, nil
}

func (p *HTTPProvider) ID() string { return p.id }

// Accept POSTs the statement. When a rate limit is set it waits for a token,
// bounded by ctx.
func (p *HTTPProvider) Accept(ctx context.Context, stmt types.Statement) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	body, err := statementBody(stmt)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Experience-API-Version", XAPIVersion)
	if p.opts.Username != "" || p.opts.Password != "" {
		req.SetBasicAuth(p.opts.Username, p.opts.Password)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post statement: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// statementBody prefers the caller's pre-serialized form.
func statementBody(stmt types.Statement) ([]byte, error) {
	if len(stmt.Raw) > 0 {
		return stmt.Raw, nil
	}
	b, err := json.Marshal(stmt)
	if err != nil {
		return nil, fmt.Errorf("encode statement %s: %w", stmt.ID, err)
	}
	return b, nil
}
