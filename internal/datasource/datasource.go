// Package datasource fetches Indian market data: equity prices and profiles
// from Yahoo Finance, mutual fund NAVs from AMFI and mfapi.in, financial
// statements from Screener.in, news from RSS feeds and web search via Tavily.
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// --- Errors ---

// ErrRateLimited is returned when a source answers 429.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrNotConfigured is returned when a source lacks required credentials.
var ErrNotConfigured = errors.New("data source not configured")

// NotFoundError reports that an identifier is unknown to a source.
type NotFoundError struct {
	Source string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Source, e.ID)
}

// NotFound marks the error as an unknown-identifier condition.
func (e *NotFoundError) NotFound() bool { return true }

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Unwrap maps 429 responses to ErrRateLimited.
func (e *ErrHTTP) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// --- Shared HTTP plumbing ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// NewHTTPClient returns an HTTP client with the given overall timeout.
// Callers own it and share it across sources.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Options configures the HTTP plumbing of a source.
type Options struct {
	HTTPClient        *http.Client
	RequestsPerSecond float64 // 0 disables limiting
	Burst             int
	Logger            *logrus.Logger
}

// client is embedded by every source.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *logrus.Entry
}

func newClient(component string, opts Options) *client {
	c := &client{http: opts.HTTPClient}
	if c.http == nil {
		c.http = NewHTTPClient(0)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	c.log = log.WithField("component", component)
	return c
}

// do sends req after waiting on the limiter. Responses with status >= 400
// are closed and returned as *ErrHTTP. The caller closes the body.
func (c *client) do(req *http.Request) (io.ReadCloser, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/html, */*")
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP %s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	c.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"url":      req.URL.Redacted(),
		"status":   resp.StatusCode,
		"duration": time.Since(start).Milliseconds(),
	}).Debug("Upstream request")

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp.Body, nil
}

// get performs a GET with the given headers.
func (c *client) get(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

// getJSON performs a GET and decodes the JSON response into v.
func (c *client) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postJSON sends payload as JSON and decodes the response into v.
func (c *client) postJSON(ctx context.Context, url string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isStatus reports whether err is an *ErrHTTP with the given status.
func isStatus(err error, code int) bool {
	var he *ErrHTTP
	return errors.As(err, &he) && he.StatusCode == code
}
