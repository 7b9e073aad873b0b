package platform

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// DefaultPrefix is the API path prefix of the auth backend.
const DefaultPrefix = "/api/v1"

// Client is the auth backend API client
type Client struct {
	BaseURL    string
	Prefix     string
	HTTPClient *http.Client
	UserAgent  string

	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithPrefix sets the API path prefix.
func WithPrefix(prefix string) ClientOption {
	return func(c *Client) {
		c.Prefix = strings.TrimRight(prefix, "/")
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Prefix:  DefaultPrefix,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, session.WrapError(session.KindTransportUnavailable, "request throttled", err, nil)
		}
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+c.Prefix+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, session.WrapError(session.KindTransportUnavailable, "auth backend unreachable", err, map[string]interface{}{
			"method": method,
			"path":   path,
		})
	}

	return resp, nil
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusClassifier maps a non-2xx status to an error kind.
type StatusClassifier func(status int) session.Kind

// credentialStatus classifies login and register responses.
func credentialStatus(status int) session.Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return session.KindInvalidCredentials
	default:
		return commonStatus(status)
	}
}

// sessionStatus classifies /auth/me responses.
func sessionStatus(status int) session.Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return session.KindNoExistingSession
	default:
		return commonStatus(status)
	}
}

func commonStatus(status int) session.Kind {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return session.KindTransportUnavailable
	case status >= 500:
		return session.KindTransportUnavailable
	default:
		return session.KindUnknown
	}
}

// parseResponse parses the response body into the target struct
func parseResponse(resp *http.Response, target interface{}, classify StatusClassifier) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		ctx := map[string]interface{}{"status": resp.StatusCode}
		if resp.Request != nil {
			ctx["request_id"] = resp.Request.Header.Get("X-Request-ID")
		}

		message := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Message != "" {
				message = errResp.Message
			} else if errResp.Error != "" {
				message = errResp.Error
			}
		} else if text := strings.TrimSpace(string(body)); text != "" {
			message = fmt.Sprintf("%s: %s", message, text)
		}

		return session.NewError(classify(resp.StatusCode), message, ctx)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return session.WrapError(session.KindUnknown, "failed to decode response", err, nil)
		}
	}

	return nil
}
