// Package http provides net/http implementations of the sitepulse sitemap
// fetcher and report client, and the HTTP server exposing the report stream.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/sitepulse"
)

// DefaultFetchTimeout is the default timeout for outbound HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// Option configures an outbound HTTP client.
type Option func(*clientConfig)

type clientConfig struct {
	client  *http.Client
	timeout time.Duration
}

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithClient uses client for requests. Its own timeout takes precedence over
// WithTimeout.
func WithClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.client = client
	}
}

func newClient(opts []Option) *http.Client {
	cfg := &clientConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client != nil {
		return cfg.client
	}
	return &http.Client{Timeout: cfg.timeout}
}

// get performs a single GET and returns the body of a 2xx response.
// Non-2xx responses return a *sitepulse.StatusError.
func get(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &sitepulse.StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
