package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SessionStatus is the lifecycle state of a remote browser session.
type SessionStatus string

const (
	// SessionInitializing indicates the backing browser is still starting up.
	SessionInitializing SessionStatus = "initializing"
	// SessionReady indicates the session can accept a command.
	SessionReady SessionStatus = "ready"
	// SessionBusy indicates a command is currently executing.
	SessionBusy SessionStatus = "busy"
	// SessionClosed indicates the session was shut down.
	SessionClosed SessionStatus = "closed"
	// SessionError indicates the backing browser failed; the session only
	// accepts close.
	SessionError SessionStatus = "error"
)

// Valid returns true if the SessionStatus is a known value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionInitializing, SessionReady, SessionBusy, SessionClosed, SessionError:
		return true
	}
	return false
}

// BrowserSession is the externally visible state of one remote browser
// session. Snapshots are value copies; mutation happens only inside the
// registry under the session lock.
type BrowserSession struct {
	ID          string        `json:"id"`
	WorkspaceID string        `json:"workspace_id"`
	UserID      string        `json:"user_id"`
	Status      SessionStatus `json:"status"`
	CurrentURL  string        `json:"current_url,omitempty"`
	LastUsedAt  time.Time     `json:"last_used_at"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CreateBrowserSessionRequest carries inputs for opening a browser session.
type CreateBrowserSessionRequest struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	StartURL    string `json:"start_url,omitempty"`
}

// Validate checks the CreateBrowserSessionRequest fields.
func (r *CreateBrowserSessionRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return errors.New("workspace id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

// BrowserCommand is one instruction to execute inside a session. Commands
// against the same session are serialized; Type selects the backend action.
type BrowserCommand struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the BrowserCommand fields.
func (c *BrowserCommand) Validate() error {
	if strings.TrimSpace(c.Type) == "" {
		return errors.New("command type is required")
	}
	return nil
}

// CommandResult is the outcome of a single executed browser command.
type CommandResult struct {
	Output     json.RawMessage `json:"output,omitempty"`
	CurrentURL string          `json:"current_url,omitempty"`
	Duration   time.Duration   `json:"duration_ms"`
}
