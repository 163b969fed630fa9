// Package cloudbrowser provides the HTTP client adapter for the external
// cloud browser automation provider.
package cloudbrowser

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
)

const defaultTimeout = 30 * time.Second

// maxResponseBytes caps provider response reads.
const maxResponseBytes = 4 << 20

// Config captures the provider endpoint and credentials.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// Client is the HTTP implementation of core.AutomationProvider.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a provider client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("provider base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid provider base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  hc,
	}, nil
}

type createSessionBody struct {
	Platform     string          `json:"platform"`
	ConnectorIDs []string        `json:"connector_ids,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Metadata json.RawMessage `json:"metadata"`
}

type taskBody struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

type taskResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// CreateSession provisions a browser session with the provider.
func (c *Client) CreateSession(ctx context.Context, params core.CreateProviderSessionParams) (*core.ProviderSession, error) {
	body := createSessionBody{
		Platform:     params.Platform,
		ConnectorIDs: params.ConnectorIDs,
		Metadata:     params.Metadata,
	}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, apperrors.Provider("provider returned session without id", nil)
	}
	return &core.ProviderSession{ID: resp.ID, Metadata: resp.Metadata}, nil
}

// RevokeSession tears the session down at the provider. Revoking an already
// revoked session returns nil; the provider treats it as settled.
func (c *Client) RevokeSession(ctx context.Context, providerSessionID string) error {
	err := c.do(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(providerSessionID), nil, nil)
	if err != nil && apperrors.IsNotFound(err) {
		return nil
	}
	return err
}

// CreateTask submits a prompt against a provider session.
func (c *Client) CreateTask(ctx context.Context, providerSessionID, prompt string) (*core.ProviderTask, error) {
	body := taskBody{SessionID: providerSessionID, Prompt: prompt}

	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tasks", body, &resp); err != nil {
		return nil, err
	}
	return providerTaskFrom(resp), nil
}

// GetTask fetches the provider's current view of a task.
func (c *Client) GetTask(ctx context.Context, providerTaskID string) (*core.ProviderTask, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(providerTaskID), nil, &resp); err != nil {
		return nil, err
	}
	return providerTaskFrom(resp), nil
}

// FetchResult retrieves the result document for a completed task.
func (c *Client) FetchResult(ctx context.Context, providerTaskID string) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(providerTaskID)+"/result", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func providerTaskFrom(resp taskResponse) *core.ProviderTask {
	return &core.ProviderTask{
		ID:     resp.ID,
		Status: resp.Status,
		Result: resp.Result,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode provider request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "provider request timed out")
		}
		return apperrors.Provider("provider request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.Provider("read provider response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFoundf("provider resource %s not found", path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperrors.Providerf(nil, "provider returned %d: %s", resp.StatusCode, truncate(data, 256))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Provider("decode provider response", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ core.AutomationProvider = (*Client)(nil)
