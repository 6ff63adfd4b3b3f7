// Package http probes and fetches remote product files.
package http

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

const maxRedirects = 10

// Config tunes the client.
type Config struct {
	// Timeout bounds each individual request.
	Timeout time.Duration
	// VerifyTLS enables certificate verification. Off by default because several
	// archives serve incomplete chains.
	VerifyTLS bool
	UserAgent string
	// Attempts is the number of GET attempts made after a successful probe.
	Attempts int
	// RateLimit caps requests per second across all mirrors. Zero disables it.
	RateLimit int
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		UserAgent: "gnssget/1.0",
		Attempts:  3,
	}
}

// Client implements Prober and Fetcher over net/http.
type Client struct {
	client    *http.Client
	userAgent string
	attempts  int
	limiter   *rate.Limiter
}

var (
	_ Prober  = (*Client)(nil)
	_ Fetcher = (*Client)(nil)
)

// NewClient creates a client from cfg. Zero fields fall back to DefaultConfig.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = def.Attempts
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec // opt-in verification
		MinVersion:         tls.VersionTLS12,
	}

	c := &Client{
		userAgent: cfg.UserAgent,
		attempts:  cfg.Attempts,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	c.client = &http.Client{
		Timeout:       cfg.Timeout,
		Transport:     transport,
		CheckRedirect: c.checkRedirect,
	}
	return c
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return nil
}

// Exists issues a HEAD request. It never retries.
func (c *Client) Exists(ctx context.Context, url string) bool {
	return c.head(ctx, url) == nil
}

// Fetch probes url and then retrieves it with up to Attempts GET requests.
// Attempts follow each other immediately; the first 2xx response wins.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.head(ctx, url); err != nil {
		return nil, &TransportError{Op: http.MethodHead, URL: url, Status: statusOf(err), Err: ErrNotFound}
	}

	var last error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if ctx.Err() != nil {
			last = ctx.Err()
			break
		}
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		last = err
	}

	return nil, &TransportError{
		Op:     http.MethodGet,
		URL:    url,
		Status: statusOf(last),
		Err:    fmt.Errorf("%w after %d attempts: %w", ErrTransport, c.attempts, last),
	}
}

// statusError carries a non-2xx status between helpers.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func statusOf(err error) int {
	var se statusError
	if stderrors.As(err, &se) {
		return se.code
	}
	return 0
}

func (c *Client) head(ctx context.Context, url string) error {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return statusError{code: resp.StatusCode}
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return nil, statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.client.Do(req)
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
