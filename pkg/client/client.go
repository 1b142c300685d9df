package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aurahabits/aura/pkg/cache"
)

// Client talks to the API over HTTP with read-through caching.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	log     *slog.Logger
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithHTTPClient substitutes the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache sets the cache backend. Defaults to an in-process cache; pass
// the Redis implementation to share entries with the server's
// invalidations.
func WithCache(cc cache.Cache) Option {
	return func(c *Client) {
		if cc != nil {
			c.cache = cc
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   cache.NewMemory(),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// tokenSuffix derives the cache key suffix from the bearer token. Hashing
// keeps raw credentials out of the cache backend's keyspace.
func tokenSuffix(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// cachedGet serves path from the cache under key, fetching and storing on a
// miss. Cache failures are invisible; the worst case is an extra fetch.
func (c *Client) cachedGet(ctx context.Context, token, path, key string, ttl time.Duration, out any) error {
	if raw, ok := c.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
		// Undecodable entry: drop it and fall through to a real fetch.
		c.cache.Invalidate(ctx, key)
	}

	raw, err := c.doRaw(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decoding %s response: %w", path, err)
	}

	c.cache.Set(ctx, key, raw, ttl)
	return nil
}

// unmarshalCached decodes a cached entry.
func unmarshalCached(raw []byte, out any) error {
	return json.Unmarshal(raw, out)
}

// set stores v under key, silently skipping entries that fail to encode.
func (c *Client) set(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.cache.Set(ctx, key, raw, ttl)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encoding %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: building %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading %s response: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return nil, apiErr
	}

	return raw, nil
}
