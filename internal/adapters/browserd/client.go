// Package browserd provides the HTTP client adapter for the headless browser
// daemon that backs remote browser sessions.
package browserd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
)

const defaultTimeout = 60 * time.Second

// Config captures the daemon endpoint.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Client is the HTTP implementation of core.BrowserBackend.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a browser daemon client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("browser daemon base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: baseURL, client: hc}, nil
}

type openBody struct {
	StartURL string `json:"start_url,omitempty"`
}

type openResponse struct {
	Handle string `json:"handle"`
}

type executeResponse struct {
	Output     json.RawMessage `json:"output"`
	CurrentURL string          `json:"current_url"`
	DurationMS int64           `json:"duration_ms"`
}

// Open starts a fresh browser and returns its handle.
func (c *Client) Open(ctx context.Context, startURL string) (string, error) {
	var resp openResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", openBody{StartURL: startURL}, &resp); err != nil {
		return "", err
	}
	if resp.Handle == "" {
		return "", apperrors.Internal("browser daemon returned empty handle")
	}
	return resp.Handle, nil
}

// Execute runs one command in the browser identified by handle.
func (c *Client) Execute(ctx context.Context, handle string, cmd model.BrowserCommand) (*model.CommandResult, error) {
	var resp executeResponse
	path := "/sessions/" + url.PathEscape(handle) + "/commands"
	if err := c.do(ctx, http.MethodPost, path, cmd, &resp); err != nil {
		return nil, err
	}
	return &model.CommandResult{
		Output:     resp.Output,
		CurrentURL: resp.CurrentURL,
		Duration:   time.Duration(resp.DurationMS) * time.Millisecond,
	}, nil
}

// Close tears down the browser. Closing an unknown handle is a no-op.
func (c *Client) Close(ctx context.Context, handle string) error {
	err := c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(handle), nil, nil)
	if err != nil && apperrors.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode browser request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build browser request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "browser command timed out")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "browser daemon request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "read browser response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFoundf("browser session not found")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperrors.Internalf("browser daemon returned %d", resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode browser response")
	}
	return nil
}

var _ core.BrowserBackend = (*Client)(nil)
