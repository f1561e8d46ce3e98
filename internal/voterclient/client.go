// Package voterclient is the device-side SDK for the ballot API. It keeps
// the client cooldown and the vote selection in local state.
package voterclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ballot/internal/cooldown/models"
	"ballot/internal/identity"
	"ballot/internal/localstate"
	"ballot/internal/platform/middleware"
	"ballot/pkg/platform/httputil"
)

const (
	DefaultUserAgent     = "ballot-voterclient/1"
	DefaultMaxReconnects = 3
	DefaultReconnectStep = time.Second
)

// APIError is a non-2xx answer from a generic endpoint.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("api error %d %s", e.Status, e.Code)
}

type Client struct {
	baseURL       string
	http          *http.Client
	apiKey        string
	userAgent     string
	state         *localstate.State
	ipLookup      identity.IPLookup
	window        time.Duration
	maxReconnects int
	reconnectStep time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithIPLookup reports the device's public IP alongside each vote.
func WithIPLookup(l identity.IPLookup) Option {
	return func(c *Client) {
		c.ipLookup = l
	}
}

func WithCooldown(window time.Duration) Option {
	return func(c *Client) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithReconnect sets how many times Watch reconnects and the linear step
// between attempts.
func WithReconnect(attempts int, step time.Duration) Option {
	return func(c *Client) {
		c.maxReconnects = attempts
		c.reconnectStep = step
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(baseURL string, state *localstate.State, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 15 * time.Second},
		userAgent:     DefaultUserAgent,
		state:         state,
		window:        models.DefaultWindow,
		maxReconnects: DefaultMaxReconnects,
		reconnectStep: DefaultReconnectStep,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, c.apiKey)
	}
	return req, nil
}

// do sends a JSON request and decodes a 2xx body into out. Other statuses
// are decoded as the error envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	var envelope httputil.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope); err == nil && envelope.Error != "" {
		apiErr.Code = envelope.Error
		apiErr.Description = envelope.ErrorDescription
	}
	return apiErr
}
