package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
)

// CloudServiceOptions groups dependencies for CloudService.
type CloudServiceOptions struct {
	Repo     core.CloudRepository    // Required: cloud session/task mirror
	Provider core.AutomationProvider // Required: external automation provider
	// CostExpr is a JMESPath expression evaluated against task results to
	// extract the provider's reported cost. Defaults to "usage.cost".
	CostExpr        string
	PollConcurrency int           // Optional: concurrent polls per batch, default 4
	Logger          *slog.Logger  // Optional: structured logger
	Metrics         statsd.Sink   // Optional: metrics sink (StatsD-compatible)
	Events          core.EventBus // Optional: workspace event fan-out
}

const (
	defaultCostExpr        = "usage.cost"
	defaultPollConcurrency = 4
)

// CloudService orchestrates tasks against the external cloud browser
// provider and keeps a local mirror of sessions and tasks.
//
// The mirror is the tenant boundary: every read resolves the owning session
// to verify workspace ownership before any provider identifier leaves the
// service. Provider status strings are mapped through the whitelist
// vocabulary before they are stored.
type CloudService struct {
	repo     core.CloudRepository
	provider core.AutomationProvider
	costExpr jmespath.JMESPath
	pollN    int
	logger   *slog.Logger
	metrics  statsd.Sink
	events   core.EventBus
}

// NewCloudService constructs a new CloudService.
func NewCloudService(opts CloudServiceOptions) (*CloudService, error) {
	if opts.Repo == nil {
		return nil, errors.New("CloudRepository is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("AutomationProvider is required")
	}

	expr := opts.CostExpr
	if expr == "" {
		expr = defaultCostExpr
	}
	costExpr, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile cost expression %q: %w", expr, err)
	}

	pollN := opts.PollConcurrency
	if pollN <= 0 {
		pollN = defaultPollConcurrency
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "cloud_service")
	}

	return &CloudService{
		repo:     opts.Repo,
		provider: opts.Provider,
		costExpr: costExpr,
		pollN:    pollN,
		logger:   logger,
		metrics:  opts.Metrics,
		events:   opts.Events,
	}, nil
}

// CreateSession provisions a session with the provider and mirrors it
// locally. The mirror row is only written after the provider confirms, so a
// provider failure leaves no local state behind.
func (s *CloudService) CreateSession(
	ctx context.Context,
	req *model.CreateCloudSessionRequest,
) (*model.CloudSession, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	provSess, err := s.provider.CreateSession(ctx, core.CreateProviderSessionParams{
		Platform:     req.Platform,
		ConnectorIDs: req.ConnectorIDs,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("provision provider session: %w", err)
	}

	sess, err := s.repo.CreateSession(ctx, &model.CloudSession{
		WorkspaceID:  req.WorkspaceID,
		Platform:     req.Platform,
		ProviderID:   provSess.ID,
		ConnectorIDs: req.ConnectorIDs,
		Metadata:     coalesceJSON(provSess.Metadata, req.Metadata),
	})
	if err != nil {
		// The provider session is orphaned at this point; revoke it on a
		// best-effort basis so it does not keep accruing cost.
		if revokeErr := s.provider.RevokeSession(ctx, provSess.ID); revokeErr != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to revoke orphaned provider session",
				"provider_id", provSess.ID,
				"error", revokeErr,
			)
		}
		return nil, fmt.Errorf("persist cloud session: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "cloud session provisioned",
			"session_id", sess.ID,
			"workspace_id", sess.WorkspaceID,
			"platform", sess.Platform,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("cloud.sessions_created", 1, map[string]string{"platform": sess.Platform})
	}
	s.publish(ctx, sess.WorkspaceID, "cloud_session.created", cloudEventData{SessionID: sess.ID})
	return sess, nil
}

// GetSession returns one cloud session, scoped to the caller's workspace.
func (s *CloudService) GetSession(ctx context.Context, workspaceID, id string) (*model.CloudSession, error) {
	sess, err := s.repo.GetSession(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get cloud session: %w", err)
	}
	return sess, nil
}

// ListSessions returns the workspace's cloud sessions.
func (s *CloudService) ListSessions(ctx context.Context, workspaceID string) ([]*model.CloudSession, error) {
	sessions, err := s.repo.ListSessions(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list cloud sessions: %w", err)
	}
	return sessions, nil
}

// RevokeSession revokes a session with the provider and marks the mirror
// revoked. Revoking an already-revoked session returns the stored row
// unchanged, so retries observe the same terminal state.
func (s *CloudService) RevokeSession(ctx context.Context, workspaceID, id string) (*model.CloudSession, error) {
	sess, err := s.repo.GetSession(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get cloud session: %w", err)
	}
	if sess.Status == model.CloudSessionRevoked {
		return sess, nil
	}

	if err := s.provider.RevokeSession(ctx, sess.ProviderID); err != nil {
		return nil, fmt.Errorf("revoke provider session: %w", err)
	}

	updated, err := s.repo.UpdateSessionStatus(ctx, sess.ID, model.CloudSessionRevoked)
	if err != nil {
		return nil, fmt.Errorf("mark cloud session revoked: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "cloud session revoked",
			"session_id", sess.ID,
			"workspace_id", workspaceID,
		)
	}
	s.publish(ctx, workspaceID, "cloud_session.revoked", cloudEventData{SessionID: sess.ID})
	return updated, nil
}

// CreateTask submits a prompt against a session. Tasks can only be created
// against active sessions; a revoked session rejects new work.
func (s *CloudService) CreateTask(
	ctx context.Context,
	workspaceID string,
	req *model.CreateCloudTaskRequest,
) (*model.CloudTask, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	sess, err := s.repo.GetSession(ctx, workspaceID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get cloud session: %w", err)
	}
	if sess.Status != model.CloudSessionActive {
		return nil, apperrors.Conflictf("cloud session %s is revoked", sess.ID)
	}

	provTask, err := s.provider.CreateTask(ctx, sess.ProviderID, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("submit provider task: %w", err)
	}

	status, err := model.NormalizeTaskStatus(provTask.Status)
	if err != nil {
		// The provider accepted the task, so mirror it in the canonical
		// initial state rather than failing with an orphan on their side.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "provider reported unrecognized status on task creation",
				"provider_task_id", provTask.ID,
				"reported", provTask.Status,
			)
		}
		status = model.TaskStatusQueued
	}

	task, err := s.repo.CreateTask(ctx, &model.CloudTask{
		SessionID:  sess.ID,
		ProviderID: provTask.ID,
		Prompt:     req.Prompt,
		Status:     status,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("persist cloud task: %w", err)
	}

	if touchErr := s.repo.TouchSession(ctx, sess.ID); touchErr != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to touch cloud session", "session_id", sess.ID, "error", touchErr)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "cloud task submitted",
			"task_id", task.ID,
			"session_id", sess.ID,
			"workspace_id", workspaceID,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("cloud.tasks_created", 1, map[string]string{"platform": sess.Platform})
	}
	s.publish(ctx, workspaceID, "cloud_task.created", cloudEventData{SessionID: sess.ID, TaskID: task.ID})
	return task, nil
}

// GetTask returns one task. Ownership follows the task -> session ->
// workspace chain and is re-verified here, on top of the repo's join filter.
func (s *CloudService) GetTask(ctx context.Context, workspaceID, id string) (*model.CloudTask, error) {
	task, err := s.repo.GetTask(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get cloud task: %w", err)
	}
	if err := s.verifyTaskOwnership(ctx, workspaceID, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks submitted against one session.
func (s *CloudService) ListTasks(ctx context.Context, workspaceID, sessionID string) ([]*model.CloudTask, error) {
	tasks, err := s.repo.ListTasksBySession(ctx, workspaceID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cloud tasks: %w", err)
	}
	return tasks, nil
}

// PollTask refreshes one task from the provider. Terminal tasks are returned
// from the mirror without a provider round-trip. A provider status outside
// the whitelist fails the poll and persists nothing.
func (s *CloudService) PollTask(ctx context.Context, workspaceID, id string) (*model.CloudTask, error) {
	task, err := s.repo.GetTask(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get cloud task: %w", err)
	}
	if err := s.verifyTaskOwnership(ctx, workspaceID, task); err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return task, nil
	}

	provTask, err := s.provider.GetTask(ctx, task.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("poll provider task: %w", err)
	}

	status, err := model.NormalizeTaskStatus(provTask.Status)
	if err != nil {
		return nil, apperrors.Providerf(err, "provider reported unrecognized task status %q", provTask.Status)
	}
	if status == task.Status && len(provTask.Result) == 0 {
		return task, nil
	}

	params := core.UpdateTaskParams{
		TaskID: task.ID,
		Status: status,
		Result: provTask.Result,
	}
	if status.Terminal() {
		now := time.Now().UTC()
		params.CompletedAt = &now
		params.Cost = s.extractCost(ctx, task.ID, provTask.Result)
	}

	updated, err := s.repo.UpdateTask(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("update cloud task: %w", err)
	}

	if s.logger != nil && updated.Status != task.Status {
		s.logger.InfoContext(ctx, "cloud task transitioned",
			"task_id", task.ID,
			"from", task.Status,
			"to", updated.Status,
		)
	}
	if s.metrics != nil && updated.Status.Terminal() {
		s.metrics.Count("cloud.tasks_finished", 1, map[string]string{"status": string(updated.Status)})
	}
	return updated, nil
}

// PollSessionTasks refreshes every non-terminal task of a session, polling
// the provider concurrently. The first provider failure cancels the
// remaining polls.
func (s *CloudService) PollSessionTasks(ctx context.Context, workspaceID, sessionID string) ([]*model.CloudTask, error) {
	tasks, err := s.repo.ListTasksBySession(ctx, workspaceID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cloud tasks: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pollN)

	refreshed := make([]*model.CloudTask, len(tasks))
	for i, task := range tasks {
		if task.Status.Terminal() {
			refreshed[i] = task
			continue
		}
		g.Go(func() error {
			updated, pollErr := s.PollTask(gctx, workspaceID, task.ID)
			if pollErr != nil {
				return pollErr
			}
			refreshed[i] = updated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// TaskResult returns the final result of a completed task. A task that has
// not completed yet is not ready; a failed task conflicts. When the mirror
// has no result document yet the provider is asked for it once and the
// answer is merged into the mirror.
func (s *CloudService) TaskResult(ctx context.Context, workspaceID, id string) (*model.TaskResult, error) {
	task, err := s.PollTask(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case model.TaskStatusCompleted:
	case model.TaskStatusFailed:
		return nil, apperrors.Conflictf("cloud task %s failed", task.ID)
	default:
		return nil, apperrors.NotReadyf("cloud task %s is %s", task.ID, task.Status)
	}

	if len(task.Result) == 0 {
		result, fetchErr := s.provider.FetchResult(ctx, task.ProviderID)
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch provider result: %w", fetchErr)
		}
		task, err = s.repo.UpdateTask(ctx, core.UpdateTaskParams{
			TaskID: task.ID,
			Status: task.Status,
			Result: result,
			Cost:   s.extractCost(ctx, task.ID, result),
		})
		if err != nil {
			return nil, fmt.Errorf("persist task result: %w", err)
		}
	}

	return &model.TaskResult{Task: task, Result: task.Result}, nil
}

// verifyTaskOwnership walks the task -> session -> workspace chain and
// rejects the read unless the owning session belongs to the caller. The repo
// join already filters by workspace; this check does not trust it.
func (s *CloudService) verifyTaskOwnership(ctx context.Context, workspaceID string, task *model.CloudTask) error {
	sess, err := s.repo.GetSession(ctx, workspaceID, task.SessionID)
	if err != nil {
		return fmt.Errorf("resolve owning session: %w", err)
	}
	if sess.WorkspaceID != workspaceID {
		return apperrors.AccessDeniedf("task %s belongs to another workspace", task.ID)
	}
	return nil
}

// extractCost evaluates the cost expression against a result document.
// Results without a numeric cost field yield nil rather than an error; cost
// accounting is advisory.
func (s *CloudService) extractCost(ctx context.Context, taskID string, result json.RawMessage) *float64 {
	if len(result) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(result, &doc); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "task result is not valid JSON", "task_id", taskID, "error", err)
		}
		return nil
	}
	value, err := s.costExpr.Search(doc)
	if err != nil || value == nil {
		return nil
	}
	cost, ok := value.(float64)
	if !ok {
		return nil
	}
	return &cost
}

type cloudEventData struct {
	SessionID string `json:"session_id"`
	TaskID    string `json:"task_id,omitempty"`
}

func (s *CloudService) publish(ctx context.Context, workspaceID, eventType string, data cloudEventData) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to encode cloud event", "type", eventType, "error", err)
		}
		return
	}
	s.events.Publish(ctx, workspaceID, core.Event{Type: eventType, Data: payload})
}

func coalesceJSON(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
