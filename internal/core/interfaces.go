// Package core provides the ports and shared types of the outreach job system.
package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// This file contains repository and adapter interface definitions (ports in
// hexagonal architecture). Service implementations depend on these
// interfaces, not concrete implementations.

// UpdateJobStatusParams groups parameters for JobRepository.UpdateStatus to keep param count ≤3.
type UpdateJobStatusParams struct {
	WorkspaceID string
	JobID       string
	Status      model.JobStatus
	Result      json.RawMessage
	CompletedAt *time.Time
}

// JobRepository defines the interface for automation job data operations.
// Every read and write is scoped by workspace.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, workspaceID, id string) (*model.Job, error)
	// ListPending returns the oldest pending jobs for the workspace, ordered
	// by started_at ascending. Jobs stay pending until a status report moves
	// them; repeated polls may return the same jobs.
	ListPending(ctx context.Context, workspaceID string, limit int) ([]*model.Job, error)
	UpdateStatus(ctx context.Context, params UpdateJobStatusParams) (*model.Job, error)
	Stats(ctx context.Context, workspaceID string) (*model.JobStats, error)
	// FailStalePending fails pending jobs older than maxAge across all
	// workspaces, up to batchSize rows per call. Used by the reaper.
	FailStalePending(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// AutomationRepository defines the interface for automation data operations.
type AutomationRepository interface {
	Create(ctx context.Context, req *model.CreateAutomationRequest) (*model.Automation, error)
	GetByID(ctx context.Context, workspaceID, id string) (*model.Automation, error)
	GetByStage(ctx context.Context, workspaceID, stageID string) (*model.Automation, error)
	List(ctx context.Context, workspaceID string, limit, offset int) ([]*model.Automation, error)
	Delete(ctx context.Context, workspaceID, id string) (bool, error)
}

// LeadRepository defines the interface for lead reads used by job dispatch.
type LeadRepository interface {
	GetByID(ctx context.Context, workspaceID, id string) (*model.Lead, error)
	ListByStage(ctx context.Context, workspaceID, stageID string) ([]*model.Lead, error)
}

// UpdateTaskParams groups parameters for CloudRepository.UpdateTask.
type UpdateTaskParams struct {
	TaskID      string
	Status      model.TaskStatus
	Result      json.RawMessage
	Cost        *float64
	CompletedAt *time.Time
}

// CloudRepository defines the interface for cloud session and task mirrors.
// Task reads resolve the owning session so tenant checks can follow the
// task -> session -> workspace chain.
type CloudRepository interface {
	CreateSession(ctx context.Context, sess *model.CloudSession) (*model.CloudSession, error)
	GetSession(ctx context.Context, workspaceID, id string) (*model.CloudSession, error)
	ListSessions(ctx context.Context, workspaceID string) ([]*model.CloudSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status model.CloudSessionStatus) (*model.CloudSession, error)
	TouchSession(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *model.CloudTask) (*model.CloudTask, error)
	GetTask(ctx context.Context, workspaceID, id string) (*model.CloudTask, error)
	ListTasksBySession(ctx context.Context, workspaceID, sessionID string) ([]*model.CloudTask, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*model.CloudTask, error)
}

// ProviderSession is what the external automation provider reports for a
// provisioned session.
type ProviderSession struct {
	ID       string
	Metadata json.RawMessage
}

// ProviderTask is the provider's view of a task. Status carries the
// provider's raw vocabulary; callers normalize it before persisting.
type ProviderTask struct {
	ID     string
	Status string
	Result json.RawMessage
}

// CreateProviderSessionParams groups inputs for AutomationProvider.CreateSession.
type CreateProviderSessionParams struct {
	Platform     string
	ConnectorIDs []string
	Metadata     json.RawMessage
}

// AutomationProvider is the port to the external cloud browser provider.
// Implementations translate these calls into provider HTTP requests; all
// failures surface as provider errors.
type AutomationProvider interface {
	CreateSession(ctx context.Context, params CreateProviderSessionParams) (*ProviderSession, error)
	RevokeSession(ctx context.Context, providerSessionID string) error
	CreateTask(ctx context.Context, providerSessionID, prompt string) (*ProviderTask, error)
	GetTask(ctx context.Context, providerTaskID string) (*ProviderTask, error)
	// FetchResult retrieves the final result document for a completed task.
	FetchResult(ctx context.Context, providerTaskID string) (json.RawMessage, error)
}

// BrowserBackend drives a real browser on behalf of a remote session. Open
// returns an opaque handle used by later calls.
type BrowserBackend interface {
	Open(ctx context.Context, startURL string) (handle string, err error)
	Execute(ctx context.Context, handle string, cmd model.BrowserCommand) (*model.CommandResult, error)
	Close(ctx context.Context, handle string) error
}

// Event is a workspace-scoped notification published on the event bus.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EventBus publishes workspace events for connected clients. Publishing is
// best effort: failures are logged, never surfaced to the caller's request.
type EventBus interface {
	Publish(ctx context.Context, workspaceID string, event Event)
}
