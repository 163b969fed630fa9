package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TaskStatus is the canonical lifecycle state of a cloud browser task.
type TaskStatus string

// CloudSessionStatus is the lifecycle state of a provider-backed session.
type CloudSessionStatus string

const (
	// TaskStatusQueued indicates the task was accepted but not yet started.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusRunning indicates the provider is executing the task.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished and a result is available.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task finished without a usable result.
	TaskStatusFailed TaskStatus = "failed"

	// CloudSessionActive indicates the session accepts new tasks.
	CloudSessionActive CloudSessionStatus = "active"
	// CloudSessionRevoked indicates the session was revoked; task creation
	// against it is rejected.
	CloudSessionRevoked CloudSessionStatus = "revoked"
)

// Valid returns true if the TaskStatus is a canonical value.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusQueued || s == TaskStatusRunning || s == TaskStatusCompleted ||
		s == TaskStatusFailed
}

// CloudSession is the local mirror of a session provisioned with the external
// automation provider. The mirror row lets lookups and ownership checks run
// without a provider round-trip.
type CloudSession struct {
	ID           string             `json:"id"            db:"id"`
	WorkspaceID  string             `json:"workspace_id"  db:"workspace_id"`
	Platform     string             `json:"platform"      db:"platform"`
	Status       CloudSessionStatus `json:"status"        db:"status"`
	ProviderID   string             `json:"provider_id"   db:"provider_id"`
	ConnectorIDs []string           `json:"connector_ids" db:"connector_ids"`
	Metadata     json.RawMessage    `json:"metadata,omitempty" db:"metadata"`
	LastUsedAt   time.Time          `json:"last_used_at"  db:"last_used_at"`
	CreatedAt    time.Time          `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"    db:"updated_at"`
}

// CloudTask is one unit of work submitted against a cloud session. Its
// effective tenant is transitively the tenant of the owning session; reads
// must verify that chain before returning task data.
type CloudTask struct {
	ID          string          `json:"id"                     db:"id"`
	SessionID   string          `json:"session_id"             db:"session_id"`
	ProviderID  string          `json:"provider_id"            db:"provider_id"`
	Prompt      string          `json:"prompt"                 db:"prompt"`
	Status      TaskStatus      `json:"status"                 db:"status"`
	Result      json.RawMessage `json:"result,omitempty"       db:"result"`
	Cost        *float64        `json:"cost,omitempty"         db:"cost"`
	Metadata    json.RawMessage `json:"metadata,omitempty"     db:"metadata"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"             db:"updated_at"`
}

// CreateCloudSessionRequest carries inputs for provisioning a cloud session.
type CreateCloudSessionRequest struct {
	WorkspaceID  string          `json:"workspace_id"`
	Platform     string          `json:"platform"`
	ConnectorIDs []string        `json:"connector_ids,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Validate checks the CreateCloudSessionRequest fields.
func (r *CreateCloudSessionRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return errors.New("workspace id is required")
	}
	if strings.TrimSpace(r.Platform) == "" {
		return errors.New("platform is required")
	}
	return nil
}

// CreateCloudTaskRequest carries inputs for submitting a task to a session.
type CreateCloudTaskRequest struct {
	SessionID string          `json:"session_id"`
	Prompt    string          `json:"prompt"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Validate checks the CreateCloudTaskRequest fields.
func (r *CreateCloudTaskRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session id is required")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	return nil
}

// TaskResult pairs a completed task with its provider result payload.
type TaskResult struct {
	Task   *CloudTask      `json:"task"`
	Result json.RawMessage `json:"result"`
}
