package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// TransportError reports a failed request: the connection failed or the
// server answered with a non-success status.
//
// StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request, including reading the body.
	// Zero disables the per-request timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RequestsPerSecond limits the request rate across all callers of the
	// client. Zero or negative means unlimited.
	RequestsPerSecond float64
}

// DefaultOptions returns options with a 60 second timeout and no rate limit.
func DefaultOptions() Options {
	return Options{
		Timeout:   60 * time.Second,
		UserAgent: "sped-tables",
	}
}

// Client wraps HTTP operations for the SPED table service.
//
// Client provides:
//   - SOAP-style XML POST requests for manifests
//   - GET requests for table downloads
//   - A per-request timeout applied through the request context
//   - Optional request rate limiting
//
// Client is safe for concurrent use.
//
// Example usage:
//
//	client := NewClient(DefaultOptions())
//
//	body, err := client.PostXML(ctx, serviceURL, envelope)
//	csv, err := client.Get(ctx, "http://host/dl?idTabela=1&versao=2")
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: &http.Client{},
		opts:       opts,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// PostXML sends body with Content-Type text/xml and returns the response body.
func (c *Client) PostXML(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body, map[string]string{
		"Content-Type": "text/xml; charset=utf-8",
	})
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *TransportError if the request fails or the response status
// is not 200 OK.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, URL: url, Err: err}
		}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	return data, nil
}
