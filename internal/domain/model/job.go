// Package model defines the core data types for the outreach job and
// remote-session orchestration system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus is the canonical lifecycle state of an automation job.
type JobStatus string

// TriggerType records how a job came to be dispatched.
type TriggerType string

const (
	// JobStatusPending indicates a job is waiting to be picked up by a worker.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates a worker has reported the job in progress.
	JobStatusRunning JobStatus = "running"
	// JobStatusSuccess indicates the job finished successfully.
	JobStatusSuccess JobStatus = "success"
	// JobStatusFailed indicates the job finished unsuccessfully.
	JobStatusFailed JobStatus = "failed"

	// TriggerManual marks jobs dispatched by an explicit user action.
	TriggerManual TriggerType = "manual"
	// TriggerScheduled marks jobs dispatched by a schedule.
	TriggerScheduled TriggerType = "scheduled"
)

// Valid returns true if the JobStatus is a canonical value.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning || s == JobStatusSuccess ||
		s == JobStatusFailed
}

// Valid returns true if the TriggerType is a known value.
func (t TriggerType) Valid() bool {
	return t == TriggerManual || t == TriggerScheduled
}

// UnmarshalText implements encoding.TextUnmarshaler so TriggerType can be
// parsed from request bodies and env values.
func (t *TriggerType) UnmarshalText(text []byte) error {
	v := TriggerType(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid trigger type: %q", string(text))
	}
	*t = v
	return nil
}

// WorkItem is one unit of work inside a job payload: a single lead plus the
// fully-qualified profile URL the worker should open. Name and AvatarURL are
// display metadata for the worker UI only.
type WorkItem struct {
	LeadID     string `json:"lead_id"`
	ProfileURL string `json:"profile_url"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// JobPayload is the durable payload of an automation job: the ordered set of
// work items, the action list from the automation definition, and the
// execution configuration forwarded verbatim to the worker.
type JobPayload struct {
	Items   []WorkItem      `json:"items"`
	Actions json.RawMessage `json:"actions"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Job represents an automation job dispatched for execution by an external
// worker. StartedAt is set at creation time (it orders the pending queue);
// CompletedAt is set exactly when the job reaches a terminal status.
type Job struct {
	ID           string          `json:"id"                     db:"id"`
	AutomationID string          `json:"automation_id"          db:"automation_id"`
	WorkspaceID  string          `json:"workspace_id"           db:"workspace_id"`
	Status       JobStatus       `json:"status"                 db:"status"`
	TriggerType  TriggerType     `json:"trigger_type"           db:"trigger_type"`
	Payload      json.RawMessage `json:"payload"                db:"payload"`
	Result       json.RawMessage `json:"result,omitempty"       db:"result"`
	StartedAt    time.Time       `json:"started_at"             db:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time       `json:"created_at"             db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"             db:"updated_at"`
}

// CreateJobRequest carries everything needed to persist a new pending job.
type CreateJobRequest struct {
	AutomationID string      `json:"automation_id"`
	WorkspaceID  string      `json:"workspace_id"`
	TriggerType  TriggerType `json:"trigger_type"`
	Payload      JobPayload  `json:"payload"`
}

// Validate checks the CreateJobRequest fields. A job with zero work items is
// never created; callers are expected to have filtered eligibility upstream.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.AutomationID) == "" {
		return errors.New("automation id is required")
	}
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return errors.New("workspace id is required")
	}
	if !r.TriggerType.Valid() {
		return errors.New("invalid trigger type")
	}
	if len(r.Payload.Items) == 0 {
		return errors.New("payload must contain at least one work item")
	}
	for i := range r.Payload.Items {
		if strings.TrimSpace(r.Payload.Items[i].ProfileURL) == "" {
			return fmt.Errorf("work item %d has no profile url", i)
		}
	}
	return nil
}

// JobStats counts a workspace's jobs by canonical status.
type JobStats struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// JobStatusResponse is the public subset of a job returned from status reads.
type JobStatusResponse struct {
	Status      JobStatus       `json:"status"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}
