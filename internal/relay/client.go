package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/logging"
)

const (
	// AuthHeader carries the API key on every request
	AuthHeader = "x-functions-key"

	// RequestIDHeader carries a per-request correlation id
	RequestIDHeader = "x-request-id"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultRetryDelay is the initial delay between read retries
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second
)

// KeySource supplies the API key. It is consulted immediately before every
// request, so implementations must not cache.
type KeySource interface {
	Key() string
}

// KeyFunc adapts a function to KeySource
type KeyFunc func() string

// Key implements KeySource
func (f KeyFunc) Key() string { return f() }

// StaticKey is a KeySource that always returns the same key
type StaticKey string

// Key implements KeySource
func (k StaticKey) Key() string { return string(k) }

// Client talks to the Govee relay API
type Client struct {
	// BaseURL is the relay root, e.g. "https://host/api/govee"
	BaseURL string

	// Keys supplies the API key per request
	Keys KeySource

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries applies to state and registry reads only. Commands are never
	// repeated. Zero (the default) disables retries.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after each attempt
	UseExponentialBackoff bool
}

// NewClient creates a relay client. A trailing slash on baseURL is ignored.
func NewClient(baseURL string, keys KeySource) *Client {
	if keys == nil {
		keys = StaticKey("")
	}
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		Keys:                  keys,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior for reads
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// ListDevices fetches the device registry. Order is preserved as returned.
func (c *Client) ListDevices(ctx context.Context) ([]DeviceSummary, error) {
	var devices []DeviceSummary
	err := c.withRetry(ctx, func() error {
		devices = nil
		return c.get(ctx, "/devices", &devices)
	})
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []DeviceSummary{}
	}
	return devices, nil
}

// GetState fetches the live state of one device
func (c *Client) GetState(ctx context.Context, deviceID string) (*DeviceState, error) {
	var state DeviceState
	err := c.withRetry(ctx, func() error {
		state = DeviceState{}
		return c.get(ctx, "/"+url.PathEscape(deviceID)+"/state", &state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SetPower switches a device on or off. The response body is ignored.
func (c *Client) SetPower(ctx context.Context, mac string, on bool) error {
	return c.get(ctx, "/"+url.PathEscape(mac)+"/power/"+PowerSegment(on), nil)
}

// SetColor sets a light's color. The response body is ignored.
func (c *Client) SetColor(ctx context.Context, mac string, rgb color.RGB) error {
	path := fmt.Sprintf("/%s/color/%d/%d/%d", url.PathEscape(mac), rgb.R, rgb.G, rgb.B)
	return c.get(ctx, path, nil)
}

// Ping checks that the relay is reachable and accepts the current key
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/devices", nil)
}

// PowerSegment returns the path segment for a power command
func PowerSegment(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// withRetry runs fn up to MaxRetries+1 times while it fails with a
// retryable error
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			if c.UseExponentialBackoff {
				delay *= 2
				if delay > c.MaxRetryDelay {
					delay = c.MaxRetryDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// get performs a single GET against path and decodes the JSON body into out
// when out is non-nil
func (c *Client) get(ctx context.Context, path string, out any) error {
	requestID := uuid.NewString()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &RelayError{Type: ErrTypeNetwork, Message: "failed to create request", Path: path, Err: err}
	}

	key := c.Keys.Key()
	req.Header.Set(AuthHeader, key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logging.LogRelayRequest(requestID, req.Method, path)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		relayErr := NewNetworkError("GET request failed", err)
		relayErr.Path = path
		logging.LogRelayResponse(requestID, path, 0, time.Since(start), relayErr)
		return relayErr
	}
	defer func() { _ = resp.Body.Close() }()

	relayErr := checkStatus(resp, key)
	if relayErr == nil && out != nil {
		relayErr = decode(resp.Body, out)
	}
	if relayErr != nil {
		relayErr.Path = path
		logging.LogRelayResponse(requestID, path, resp.StatusCode, time.Since(start), relayErr)
		return relayErr
	}

	logging.LogRelayResponse(requestID, path, resp.StatusCode, time.Since(start), nil)
	return nil
}

func checkStatus(resp *http.Response, key string) *RelayError {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if key == "" {
			e := NewMissingCredentialError()
			e.StatusCode = resp.StatusCode
			return e
		}
		return NewAuthError(resp.StatusCode)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := "unexpected status code: " + strconv.Itoa(resp.StatusCode)
		if len(body) > 0 {
			msg += ": " + strings.TrimSpace(string(body))
		}
		return NewHTTPError(resp.StatusCode, msg)
	}
	return nil
}

func decode(body io.Reader, out any) *RelayError {
	data, err := io.ReadAll(body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewParseError("failed to parse JSON response", err)
	}
	return nil
}
