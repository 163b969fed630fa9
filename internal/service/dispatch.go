package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/domain/profile"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
)

// ErrNoEligibleLeads indicates a trigger found no leads that could be turned
// into work items. No job is created in that case.
var ErrNoEligibleLeads = errors.New("no eligible leads for automation")

// DispatchServiceOptions groups dependencies for DispatchService.
type DispatchServiceOptions struct {
	Automations core.AutomationRepository // Required: automation repository
	Leads       core.LeadRepository       // Required: lead repository
	Jobs        *JobService               // Required: job creation
	Logger      *slog.Logger              // Optional: structured logger
}

// DispatchService manages automation definitions and turns them into jobs.
//
// Triggering an automation collects the leads sitting in its stage, resolves
// each lead's profile reference into an absolute URL, and queues one pending
// job carrying the full batch of work items.
type DispatchService struct {
	automations core.AutomationRepository
	leads       core.LeadRepository
	jobs        *JobService
	logger      *slog.Logger
}

// NewDispatchService constructs a new DispatchService.
func NewDispatchService(opts DispatchServiceOptions) (*DispatchService, error) {
	if opts.Automations == nil {
		return nil, errors.New("AutomationRepository is required")
	}
	if opts.Leads == nil {
		return nil, errors.New("LeadRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "dispatch_service")
	}

	return &DispatchService{
		automations: opts.Automations,
		leads:       opts.Leads,
		jobs:        opts.Jobs,
		logger:      logger,
	}, nil
}

// CreateAutomation registers a new automation. At most one automation may
// exist per stage within a workspace; a second registration conflicts.
func (s *DispatchService) CreateAutomation(
	ctx context.Context,
	req *model.CreateAutomationRequest,
) (*model.Automation, error) {
	if !profile.KnownPlatform(req.Platform) {
		return nil, apperrors.ValidationField("platform", fmt.Sprintf("unknown platform: %q", req.Platform))
	}

	automation, err := s.automations.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create automation: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "automation created",
			"id", automation.ID,
			"workspace_id", automation.WorkspaceID,
			"stage_id", automation.StageID,
			"platform", automation.Platform,
		)
	}
	return automation, nil
}

// GetAutomation returns one automation, scoped to the caller's workspace.
func (s *DispatchService) GetAutomation(ctx context.Context, workspaceID, id string) (*model.Automation, error) {
	automation, err := s.automations.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, fmt.Errorf("get automation: %w", err)
	}
	return automation, nil
}

// ListAutomations returns the workspace's automations.
func (s *DispatchService) ListAutomations(
	ctx context.Context,
	workspaceID string,
	limit, offset int,
) ([]*model.Automation, error) {
	automations, err := s.automations.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	return automations, nil
}

// DeleteAutomation removes an automation. Deleting an absent automation
// returns not found.
func (s *DispatchService) DeleteAutomation(ctx context.Context, workspaceID, id string) error {
	deleted, err := s.automations.Delete(ctx, workspaceID, id)
	if err != nil {
		return fmt.Errorf("delete automation: %w", err)
	}
	if !deleted {
		return apperrors.NotFoundf("Automation with id %s not found", id)
	}
	return nil
}

// Trigger dispatches an automation: every lead currently in the automation's
// stage becomes one work item, and the batch is queued as a single pending
// job. Leads whose profile reference cannot be resolved for the automation's
// platform are skipped with a log line rather than failing the whole
// dispatch. A trigger with zero usable leads creates nothing and returns
// ErrNoEligibleLeads.
func (s *DispatchService) Trigger(
	ctx context.Context,
	workspaceID, automationID string,
	trigger model.TriggerType,
) (*model.Job, error) {
	automation, err := s.automations.GetByID(ctx, workspaceID, automationID)
	if err != nil {
		return nil, fmt.Errorf("get automation: %w", err)
	}
	if !automation.Enabled {
		return nil, apperrors.Validationf("automation %s is disabled", automationID)
	}

	leads, err := s.leads.ListByStage(ctx, workspaceID, automation.StageID)
	if err != nil {
		return nil, fmt.Errorf("list stage leads: %w", err)
	}

	items := s.buildWorkItems(ctx, automation, leads)
	if len(items) == 0 {
		return nil, ErrNoEligibleLeads
	}

	job, err := s.jobs.Create(ctx, &model.CreateJobRequest{
		AutomationID: automation.ID,
		WorkspaceID:  workspaceID,
		TriggerType:  trigger,
		Payload: model.JobPayload{
			Items:   items,
			Actions: automation.Actions,
			Config:  automation.Config,
		},
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "automation triggered",
			"automation_id", automation.ID,
			"job_id", job.ID,
			"items", len(items),
			"skipped", len(leads)-len(items),
			"trigger", trigger,
		)
	}
	return job, nil
}

// buildWorkItems filters the stage's leads down to those usable by the
// automation's platform and resolves their profile URLs.
func (s *DispatchService) buildWorkItems(
	ctx context.Context,
	automation *model.Automation,
	leads []*model.Lead,
) []model.WorkItem {
	items := make([]model.WorkItem, 0, len(leads))
	for _, lead := range leads {
		if lead.Platform != "" && lead.Platform != automation.Platform {
			continue
		}
		profileURL, err := profile.CanonicalURL(automation.Platform, lead.ProfileRef)
		if err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping lead with unusable profile reference",
					"lead_id", lead.ID,
					"platform", automation.Platform,
					"error", err,
				)
			}
			continue
		}
		items = append(items, model.WorkItem{
			LeadID:     lead.ID,
			ProfileURL: profileURL,
			Name:       lead.Name,
			AvatarURL:  lead.AvatarURL,
		})
	}
	return items
}
