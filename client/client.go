// Package client talks to the back-office admin API over HTTP. It implements
// the aggregator sources and the notification backend so the activity view
// and the notification channel can run outside the server process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiPrefix = "/api/admin"

// Client is a thin HTTP client for the admin API. It handles Bearer token
// authentication, JSON marshaling, and retry with exponential backoff on
// HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// stream has no timeout; the notification stream stays open until
	// its context is cancelled.
	stream     *http.Client
	maxRetries int
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. https://console.example.com). token is either the static admin token
// or an admin JWT.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stream:     &http.Client{},
		maxRetries: 3,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	Causes     []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error (%d) on %s %s", e.StatusCode, e.Method, e.Path)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Causes) > 0 {
		msg += " [" + strings.Join(e.Causes, "; ") + "]"
	}
	return msg
}

// errorBody covers both error shapes the API returns.
type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details string   `json:"details"`
	Causes  []string `json:"causes"`
}

func newAPIError(resp *http.Response, method, path string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		if eb.Details != "" {
			apiErr.Message += ": " + eb.Details
		}
		apiErr.Causes = eb.Causes
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

// do builds the request, handles auth, rate limiting with backoff and JSON
// (de)serialization.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := c.newRequest(ctx, method, path, bodyReader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfterDuration(resp, attempt)
			lastErr = newAPIError(resp, method, path, respBody)
			c.logger.Debug("rate limited, backing off",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newAPIError(resp, method, path, respBody)
		}
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}
		return nil
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header, falling back to
// exponential backoff capped at 30s.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return min(time.Duration(1<<uint(attempt))*time.Second, 30*time.Second)
}
