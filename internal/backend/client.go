package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edvin/swiftwheelz/internal/metrics"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	// ErrRejected is returned when the backend answers 2xx with an empty
	// body for a write, which is how it reports a failed validation.
	ErrRejected = errors.New("rejected by backend")
)

// APIError is a non-2xx response from the rental backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps HTTP status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Client talks to the rental backend REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration, tlsConfig *tls.Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Ping checks that the backend answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/branch/getall", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// expandPath substitutes %s verbs in pattern with path-escaped params.
func expandPath(pattern string, params ...any) string {
	if len(params) == 0 {
		return pattern
	}
	escaped := make([]any, len(params))
	for i, p := range params {
		escaped[i] = url.PathEscape(fmt.Sprint(p))
	}
	return fmt.Sprintf(pattern, escaped...)
}

// do performs a request against pattern (a path with %s placeholders) and
// decodes the JSON response into result when non-nil. When the backend
// replies 2xx with an empty or null body, emptyErr is returned if set.
func (c *Client) do(ctx context.Context, method, pattern string, params []any, body, result any, emptyErr error) error {
	path := expandPath(pattern, params...)
	operation := method + " " + pattern

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackendCall(operation, "error", time.Since(start))
		return fmt.Errorf("backend request %s: %w", operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.ObserveBackendCall(operation, "error", time.Since(start))
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		metrics.ObserveBackendCall(operation, fmt.Sprintf("%dxx", resp.StatusCode/100), time.Since(start))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(payload)}
	}
	metrics.ObserveBackendCall(operation, "ok", time.Since(start))

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if emptyErr != nil {
			return fmt.Errorf("backend %s %s: %w", method, path, emptyErr)
		}
		return nil
	}

	if result != nil {
		if err := json.Unmarshal(trimmed, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts a readable message from an error body. Spring error
// bodies carry "message" or "error"; anything else is returned as text.
func errorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func get[T any](ctx context.Context, c *Client, pattern string, params ...any) (*T, error) {
	var v T
	if err := c.do(ctx, http.MethodGet, pattern, params, nil, &v, ErrNotFound); err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, c *Client, pattern string, params ...any) ([]T, error) {
	var items []T
	if err := c.do(ctx, http.MethodGet, pattern, params, nil, &items, nil); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func doJSON[T any](ctx context.Context, c *Client, method, pattern string, body any, params ...any) (*T, error) {
	var v T
	if err := c.do(ctx, method, pattern, params, body, &v, ErrRejected); err != nil {
		return nil, err
	}
	return &v, nil
}

func doNoBody(ctx context.Context, c *Client, pattern string, params ...any) error {
	return c.do(ctx, http.MethodDelete, pattern, params, nil, nil, nil)
}
