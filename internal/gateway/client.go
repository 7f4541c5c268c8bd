// Package gateway talks to the remote personal-trainer REST API.
//
// Every call is a single attempt: transport failures and non-success
// statuses come back as *RequestError wrapping core.ErrRequestFailed, and
// nothing is retried or cached.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL   string        // e.g. https://host/api
	Timeout   time.Duration // 0 leaves the transport default in place
	UserAgent string
}

// Client is the REST client shared by all resources.
type Client struct {
	http    *resty.Client
	baseURL string
	metrics *Metrics
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = resty.NewWithClient(hc).SetBaseURL(c.baseURL) }
}

// New creates a client for the backend at cfg.BaseURL.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		http:    resty.New().SetBaseURL(base),
		baseURL: base,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		c.http.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		c.http.SetHeader("User-Agent", cfg.UserAgent)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Customers returns the customer resource.
func (c *Client) Customers() *Customers {
	return &Customers{c: c}
}

// Trainings returns the training resource.
func (c *Client) Trainings() *Trainings {
	return &Trainings{c: c, customers: c.Customers()}
}

// Reset asks the backend to restore its demo data.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.do(ctx, "reset", http.MethodPost, "/reset", nil)
	return err
}

// do performs one request and returns the body of a 2xx response.
// path may be relative to the base URL or an absolute locator.
func (c *Client) do(ctx context.Context, resource, method, path string, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	url := c.resolve(path)
	if err != nil {
		c.observe(resource, method, "error", elapsed)
		c.log.DebugContext(ctx, "backend request failed", "method", method, "url", url, "error", err)
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		c.observe(resource, method, statusOutcome(resp.StatusCode()), elapsed)
		c.log.DebugContext(ctx, "backend returned error status",
			"method", method, "url", url, "status", resp.StatusCode())
		return nil, &RequestError{Method: method, URL: url, Status: resp.StatusCode()}
	}

	c.observe(resource, method, "ok", elapsed)
	c.log.DebugContext(ctx, "backend request",
		"method", method, "url", url, "status", resp.StatusCode(), "duration_ms", elapsed.Milliseconds())
	return resp.Body(), nil
}

// getJSON performs a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, resource, path string, out any) error {
	body, err := c.do(ctx, resource, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Method: http.MethodGet, URL: c.resolve(path), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) observe(resource, method, outcome string, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.observe(resource, method, outcome, elapsed)
	}
}

func statusOutcome(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "unexpected"
	}
}
