package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/matzehuels/autoreqs/pkg/cache"
	apperrors "github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/observability"
)

// Client provides shared HTTP functionality for index API clients.
// It handles memoization and common request headers. It never retries.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Keys stored in c are prefixed with prefix. A nil cache disables memoization.
// Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// The fetch function should populate v; on success, v is stored in the cache.
// A failed fetch is returned as-is and nothing is stored.
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	key = c.prefix + key
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, apperrors.Wrap(transportCode(err), fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", url)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, apperrors.Wrap(statusCode(err), err, "GET %s", url)
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// transportCode classifies a failed round trip. Deadline expiry, whether
// from the lookup context or the client timeout, is a timeout.
func transportCode(err error) apperrors.Code {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apperrors.ErrCodeTimeout
	}
	return apperrors.ErrCodeNetwork
}

func statusCode(err error) apperrors.Code {
	if errors.Is(err, ErrNotFound) {
		return apperrors.ErrCodeNotFound
	}
	return apperrors.ErrCodeNetwork
}
