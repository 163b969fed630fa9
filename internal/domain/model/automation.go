package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Automation binds a pipeline stage to an ordered action list. At most one
// automation exists per (workspace, stage) pair.
type Automation struct {
	ID          string          `json:"id"           db:"id"`
	WorkspaceID string          `json:"workspace_id" db:"workspace_id"`
	StageID     string          `json:"stage_id"     db:"stage_id"`
	Name        string          `json:"name"         db:"name"`
	Platform    string          `json:"platform"     db:"platform"`
	Actions     json.RawMessage `json:"actions"      db:"actions"`
	Config      json.RawMessage `json:"config,omitempty" db:"config"`
	Enabled     bool            `json:"enabled"      db:"enabled"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"   db:"updated_at"`
}

// CreateAutomationRequest carries inputs for registering an automation.
type CreateAutomationRequest struct {
	WorkspaceID string          `json:"workspace_id"`
	StageID     string          `json:"stage_id"`
	Name        string          `json:"name"`
	Platform    string          `json:"platform"`
	Actions     json.RawMessage `json:"actions"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Validate checks the CreateAutomationRequest fields.
func (r *CreateAutomationRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return errors.New("workspace id is required")
	}
	if strings.TrimSpace(r.StageID) == "" {
		return errors.New("stage id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Platform) == "" {
		return errors.New("platform is required")
	}
	if len(r.Actions) == 0 {
		return errors.New("actions are required")
	}
	return nil
}
