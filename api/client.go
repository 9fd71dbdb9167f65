package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client wraps HTTP calls to the backend: base URL, bearer credentials,
// JSON bodies and the backend's error envelope. The backend is the only
// source of truth; the client holds no state beyond the token source.
type Client struct {
	base       string
	httpClient *http.Client
	logger     *zap.Logger

	// tokenSource supplies the current session's bearer token, empty when
	// unauthenticated.
	tokenSource func() string

	// onUnauthorized is invoked on every 401 so the session layer can force
	// a logout. A 401 must never be swallowed by individual callers.
	onUnauthorized func()
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// WithToken returns a shallow copy bound to a fixed bearer token and a
// per-session 401 hook. Page handlers use this for authenticated calls.
func (c *Client) WithToken(token string, onUnauthorized func()) *Client {
	bound := *c
	bound.tokenSource = func() string { return token }
	bound.onUnauthorized = onUnauthorized
	return &bound
}

// Do performs a JSON request. body may be nil; out may be nil when the
// caller does not care about the response body.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// DoMultipart posts a prebuilt multipart body (profile image upload).
func (c *Client) DoMultipart(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	defer res.Body.Close()

	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)))

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if out == nil {
			return nil
		}
		return json.NewDecoder(res.Body).Decode(out)
	case res.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		return decodeBackendError(res)
	}
}

func decodeBackendError(res *http.Response) error {
	var envelope struct {
		Error     string     `json:"error"`
		Message   string     `json:"message"`
		Reason    string     `json:"reason"`
		BlockedAt *time.Time `json:"blockedAt"`
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	json.Unmarshal(raw, &envelope)

	if envelope.Error == "account_blocked" {
		blocked := &BlockedError{Message: envelope.Message, Reason: envelope.Reason}
		if envelope.BlockedAt != nil {
			blocked.BlockedAt = *envelope.BlockedAt
		}
		return blocked
	}

	if envelope.Message == "" {
		envelope.Message = http.StatusText(res.StatusCode)
	}
	return &BackendError{Status: res.StatusCode, Code: envelope.Error, Message: envelope.Message}
}
