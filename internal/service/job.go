package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relaycrm/outreach-api/internal/core"
	domainjob "github.com/relaycrm/outreach-api/internal/domain/job"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/observability/metrics"
	"github.com/relaycrm/outreach-api/internal/observability/notify"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo         core.JobRepository     // Required: job repository
	BatchPolicy  *domainjob.BatchPolicy // Optional: override default batch policy
	DefaultBatch int                    // Used when BatchPolicy is nil
	MaxBatch     int                    // Used when BatchPolicy is nil
	Logger       *slog.Logger           // Optional: structured logger
	Events       core.EventBus          // Optional: workspace event fan-out
	Metrics      statsd.Sink            // Optional: metrics sink (StatsD-compatible)
	Notifier     *notify.Fanout         // Optional: failure notification fan-out
}

// JobService provides business logic for automation job operations.
//
// This service manages:
// - Creating pending jobs for the worker queue
// - Non-exclusive pending polls with batch size normalisation
// - Worker status reports, mapped onto the canonical status machine
// - Workspace-scoped status reads and queue stats.
type JobService struct {
	repo        core.JobRepository
	batchPolicy *domainjob.BatchPolicy
	logger      *slog.Logger
	events      core.EventBus
	metrics     statsd.Sink
	notifier    *notify.Fanout
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}

	batchPolicy := opts.BatchPolicy
	if batchPolicy == nil {
		defaultBatch := opts.DefaultBatch
		if defaultBatch <= 0 {
			defaultBatch = domainjob.DefaultBatchSize
		}
		maxBatch := opts.MaxBatch
		if maxBatch <= 0 {
			maxBatch = domainjob.MaxBatchSize
		}
		var err error
		batchPolicy, err = domainjob.NewBatchPolicy(defaultBatch, maxBatch)
		if err != nil {
			return nil, fmt.Errorf("create batch policy: %w", err)
		}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
		logger.Debug("JobService initialized",
			"default_batch", batchPolicy.Default(),
		)
	}

	return &JobService{
		repo:        opts.Repo,
		batchPolicy: batchPolicy,
		logger:      logger,
		events:      opts.Events,
		metrics:     opts.Metrics,
		notifier:    opts.Notifier,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Create persists a new pending job and announces it on the workspace event
// bus so connected workers can poll immediately.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job created",
			"id", job.ID,
			"automation_id", job.AutomationID,
			"workspace_id", job.WorkspaceID,
			"trigger", job.TriggerType,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("jobs.created", 1, map[string]string{"trigger": string(job.TriggerType)})
	}

	s.publish(ctx, job.WorkspaceID, "job.created", jobEventData{JobID: job.ID, Status: job.Status})
	return job, nil
}

// GetByID returns the full job row, scoped to the caller's workspace.
func (s *JobService) GetByID(ctx context.Context, workspaceID, id string) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListPending returns the oldest pending jobs for the workspace. The poll is
// non-exclusive: jobs are not reserved and repeated polls return the same
// rows until a worker reports a status change.
func (s *JobService) ListPending(ctx context.Context, workspaceID string, requested int) ([]*model.Job, error) {
	decision := s.batchPolicy.Resolve(requested)
	if decision.Clamped() && s.logger != nil {
		s.logger.DebugContext(ctx, "pending batch size clamped",
			"workspace_id", workspaceID,
			"requested", decision.Requested,
			"effective", decision.Size,
		)
	}

	jobs, err := s.repo.ListPending(ctx, workspaceID, decision.Size)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	if s.metrics != nil {
		s.metrics.Count("jobs.pending_polls", 1, nil)
		s.metrics.Gauge("jobs.pending_batch", float64(len(jobs)), nil)
	}
	return jobs, nil
}

// ReportStatus applies a worker's status report to a job. The reported status
// string is mapped through the whitelist vocabulary; unknown strings are
// rejected before any write. Terminal states are sticky: a report that would
// move a job backwards is dropped and the stored row returned unchanged, but
// a supplementary result on a repeated terminal report is still merged.
func (s *JobService) ReportStatus(
	ctx context.Context,
	workspaceID, jobID, reported string,
	result json.RawMessage,
) (*model.Job, error) {
	status, err := model.NormalizeJobStatus(reported)
	if err != nil {
		return nil, apperrors.ValidationField("status", err.Error())
	}

	var completedAt *time.Time
	if status.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	// A repeated or regressive report comes back as the stored row, so the
	// prior status decides whether this report is the failing transition.
	notifyFailure := status == model.JobStatusFailed && s.notifier != nil && s.notifier.Enabled()
	if notifyFailure {
		if prior, priorErr := s.repo.GetByID(ctx, workspaceID, jobID); priorErr == nil {
			notifyFailure = prior.Status != model.JobStatusFailed
		}
	}

	job, err := s.repo.UpdateStatus(ctx, core.UpdateJobStatusParams{
		WorkspaceID: workspaceID,
		JobID:       jobID,
		Status:      status,
		Result:      result,
		CompletedAt: completedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job status reported",
			"id", job.ID,
			"workspace_id", workspaceID,
			"reported", reported,
			"status", job.Status,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("jobs.status_reports", 1, map[string]string{"status": string(job.Status)})
		metrics.EmitJobTransition(s.metrics, metrics.JobMetric{
			Trigger:  string(job.TriggerType),
			Status:   string(job.Status),
			Result:   transitionResult(job.Status),
			Duration: completionDuration(job),
		})
	}

	if notifyFailure && job.Status == model.JobStatusFailed {
		if notifyErr := s.notifier.SendJobFailure(ctx, jobFailurePayload(job)); notifyErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "job failure notification error", "id", job.ID, "error", notifyErr)
		}
	}

	s.publish(ctx, workspaceID, "job.status", jobEventData{JobID: job.ID, Status: job.Status})
	return job, nil
}

// GetStatus returns the public status view of a job: status, completion time
// and result document only.
func (s *JobService) GetStatus(ctx context.Context, workspaceID, jobID string) (*model.JobStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, workspaceID, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}
	return &model.JobStatusResponse{
		Status:      job.Status,
		CompletedAt: job.CompletedAt,
		Result:      job.Result,
	}, nil
}

// Stats returns per-status job counts for the workspace.
func (s *JobService) Stats(ctx context.Context, workspaceID string) (*model.JobStats, error) {
	stats, err := s.repo.Stats(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}
	return stats, nil
}

func transitionResult(status model.JobStatus) string {
	switch status {
	case model.JobStatusSuccess:
		return metrics.ResultSuccess
	case model.JobStatusFailed:
		return metrics.ResultError
	default:
		return metrics.ResultNoop
	}
}

// completionDuration reports queue-to-completion time for terminal jobs.
func completionDuration(job *model.Job) time.Duration {
	if job.CompletedAt == nil || job.StartedAt.IsZero() {
		return 0
	}
	return job.CompletedAt.Sub(job.StartedAt)
}

func jobFailurePayload(job *model.Job) notify.JobFailurePayload {
	occurredAt := time.Now().UTC()
	if job.CompletedAt != nil {
		occurredAt = *job.CompletedAt
	}
	return notify.JobFailurePayload{
		JobID:        job.ID,
		WorkspaceID:  job.WorkspaceID,
		AutomationID: job.AutomationID,
		Trigger:      string(job.TriggerType),
		Error:        resultErrorMessage(job.Result),
		Severity:     notify.SeverityCritical,
		OccurredAt:   occurredAt,
	}
}

// resultErrorMessage pulls the worker-reported error out of the result
// document when one is present.
func resultErrorMessage(result json.RawMessage) string {
	if len(result) == 0 {
		return ""
	}
	var doc struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(result, &doc); err != nil {
		return ""
	}
	return doc.Error
}

type jobEventData struct {
	JobID  string          `json:"job_id"`
	Status model.JobStatus `json:"status"`
}

func (s *JobService) publish(ctx context.Context, workspaceID, eventType string, data jobEventData) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to encode job event", "type", eventType, "error", err)
		}
		return
	}
	s.events.Publish(ctx, workspaceID, core.Event{Type: eventType, Data: payload})
}
