// Package api provides the HTTP clients for the auditorium booking API:
// an anonymous client for the auth endpoints, and bearer-attached clients
// for the user and admin endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/audictl/internal/logging"
	"github.com/me/audictl/pkg/model"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an unstructured error body is kept.
const maxErrorBody = 512

// RequestHook runs on every outgoing request before it is sent.
type RequestHook func(*http.Request) error

// TokenFunc returns the current bearer token, or "" when logged out.
type TokenFunc func(context.Context) string

// BearerHook attaches the token returned by tokens as a bearer credential.
// No token means no Authorization header; the server rejects the request.
func BearerHook(tokens TokenFunc) RequestHook {
	return func(req *http.Request) error {
		if tok := tokens(req.Context()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		return nil
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHook appends a pre-send hook.
func WithHook(h RequestHook) Option {
	return func(c *Client) {
		c.hooks = append(c.hooks, h)
	}
}

// Client is the shared HTTP JSON core of the three API channels. It never
// retries and never refreshes credentials: a failed request is returned to
// the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	hooks      []RequestHook
}

func newClient(baseURL, channel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api", "channel", channel)
	return c
}

// BaseURL returns the channel's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs an HTTP request and returns the raw response body of a 2xx
// response. Any other status becomes a *model.APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, hook := range c.hooks {
		if err := hook(req); err != nil {
			return nil, fmt.Errorf("prepare request: %w", err)
		}
	}

	c.logger.Debug("HTTP request", "method", method, "url", url, "request_id", reqID,
		"authenticated", req.Header.Get("Authorization") != "")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("HTTP response", "status", resp.StatusCode, "request_id", reqID,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, reqID, respBody)
	}
	return respBody, nil
}

// doJSON performs a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func newAPIError(status int, reqID string, body []byte) *model.APIError {
	apiErr := &model.APIError{StatusCode: status, RequestID: reqID}

	var eb model.ErrorBody
	if json.Unmarshal(body, &eb) == nil && eb.Text() != "" {
		apiErr.Message = eb.Text()
		return apiErr
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "…"
	}
	if text == "" {
		text = http.StatusText(status)
	}
	apiErr.Message = text
	return apiErr
}

// ackMessage extracts a human-readable acknowledgement from a response that
// may be a JSON object with a message field or plain text.
func ackMessage(data []byte) string {
	var m model.MessageResponse
	if json.Unmarshal(data, &m) == nil && m.Message != "" {
		return m.Message
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		return s
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return text
}
