package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrMissingID is returned by Update and Delete when the record has no identifier.
var ErrMissingID = errors.New("registry: missing record identifier")

// StatusError is a non-2xx answer from the registry.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("registry: %s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
	}
	return fmt.Sprintf("registry: %s %s: status %d", e.Method, e.URL, e.Code)
}

// Options tune the HTTP transport. The zero value means no retries and no client timeout.
type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client talks to the remote node registry, a JSON collection endpoint
// supporting GET/POST on the base URL and PATCH/DELETE on base/<id>.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	http    *retryablehttp.Client
}

func NewClient(baseURL string, opts Options) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newRetryableClient(opts),
	}
}

func newRetryableClient(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		c.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
	}
	c.HTTPClient.Timeout = opts.Timeout
	c.Logger = nil
	c.CheckRetry = transportOnlyRetryPolicy
	// Hand the last response back instead of a generic "giving up" error.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// transportOnlyRetryPolicy retries connection failures but never HTTP status
// codes, so registry error answers reach the caller unchanged.
func transportOnlyRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}

// Reconfigure swaps the base URL and transport options in place.
func (c *Client) Reconfigure(baseURL string, opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.http = newRetryableClient(opts)
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) url(path string) string {
	base := c.BaseURL()
	if path == "" {
		return base
	}
	return base + path
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	url := c.url(path)

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("registry: encode %s body: %w", method, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return fmt.Errorf("registry: build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	hc := c.http
	c.mu.RUnlock()

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("registry: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("registry: read %s response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method: method,
			URL:    url,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("registry: decode %s response: %w", method, err)
	}
	return nil
}
