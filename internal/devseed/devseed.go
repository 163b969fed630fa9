// Package devseed populates a development database with a demo workspace:
// a handful of pipeline leads, an automation per stage, and one pending job
// the extension worker can pick up straight away.
package devseed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/relaycrm/outreach-api/internal/data"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/service"
)

// DevWorkspaceID is the workspace all seeded rows belong to. The dev auth
// provider maps its synthetic user into the same workspace.
const DevWorkspaceID = "ws-dev"

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB          *sql.DB
	automations *data.AutomationRepo
	leads       *data.LeadRepo
	dispatch    *service.DispatchService
}

// NewServices constructs all required services for seeding using the provided DB.
func NewServices(db *sql.DB) (Services, error) {
	cfg := data.RepoConfig{}
	automationRepo := data.NewAutomationRepo(db, cfg)
	leadRepo := data.NewLeadRepo(db, cfg)
	jobRepo := data.NewJobRepo(db, cfg)

	jobs, err := service.NewJobService(service.JobServiceOptions{Repo: jobRepo})
	if err != nil {
		return Services{}, fmt.Errorf("create job service: %w", err)
	}

	dispatch, err := service.NewDispatchService(service.DispatchServiceOptions{
		Automations: automationRepo,
		Leads:       leadRepo,
		Jobs:        jobs,
	})
	if err != nil {
		return Services{}, fmt.Errorf("create dispatch service: %w", err)
	}

	return Services{
		DB:          db,
		automations: automationRepo,
		leads:       leadRepo,
		dispatch:    dispatch,
	}, nil
}

type seedLead struct {
	ID         string
	StageID    string
	Name       string
	Platform   string
	ProfileRef string
}

func seedLeads() []seedLead {
	return []seedLead{
		{ID: "lead-dev-1", StageID: "stage-prospect", Name: "Dana Whitfield", Platform: "linkedin", ProfileRef: "dana-whitfield"},
		{ID: "lead-dev-2", StageID: "stage-prospect", Name: "Marcus Oyelaran", Platform: "linkedin", ProfileRef: "https://www.linkedin.com/in/marcus-oyelaran/"},
		{ID: "lead-dev-3", StageID: "stage-prospect", Name: "Priya Raghunathan", Platform: "linkedin", ProfileRef: "priya-raghunathan"},
		{ID: "lead-dev-4", StageID: "stage-outreach", Name: "Tomas Kubrick", Platform: "x", ProfileRef: "tkubrick"},
	}
}

type seedAutomation struct {
	StageID  string
	Name     string
	Platform string
	Actions  json.RawMessage
}

func seedAutomations() []seedAutomation {
	return []seedAutomation{
		{
			StageID:  "stage-prospect",
			Name:     "Prospect profile visit",
			Platform: "linkedin",
			Actions:  json.RawMessage(`[{"type":"visit_profile"},{"type":"scrape_profile"}]`),
		},
		{
			StageID:  "stage-outreach",
			Name:     "Outreach follow",
			Platform: "x",
			Actions:  json.RawMessage(`[{"type":"follow"}]`),
		},
	}
}

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent: existing rows are left alone.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := insertLeads(ctx, svcs.DB, seedLeads()); err != nil {
		return fmt.Errorf("seed leads: %w", err)
	}

	for _, a := range seedAutomations() {
		_, err := svcs.automations.Create(ctx, &model.CreateAutomationRequest{
			WorkspaceID: DevWorkspaceID,
			StageID:     a.StageID,
			Name:        a.Name,
			Platform:    a.Platform,
			Actions:     a.Actions,
		})
		switch {
		case apperrors.IsConflict(err):
			logger.InfoContext(ctx, "automation already seeded", "stage_id", a.StageID)
		case err != nil:
			return fmt.Errorf("seed automation for stage %s: %w", a.StageID, err)
		default:
			logger.InfoContext(ctx, "seeded automation", "stage_id", a.StageID, "name", a.Name)
		}
	}

	if err := triggerProspectJob(ctx, svcs, logger); err != nil {
		return err
	}

	logger.InfoContext(ctx, "development seeding complete", "workspace_id", DevWorkspaceID)
	return nil
}

func insertLeads(ctx context.Context, db *sql.DB, leads []seedLead) error {
	const q = `
		INSERT INTO leads (id, workspace_id, stage_id, name, platform, profile_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	for _, l := range leads {
		if _, err := db.ExecContext(ctx, q, l.ID, DevWorkspaceID, l.StageID, l.Name, l.Platform, l.ProfileRef); err != nil {
			return fmt.Errorf("insert lead %s: %w", l.ID, err)
		}
	}
	return nil
}

// triggerProspectJob queues one manual job against the prospect automation so
// a freshly seeded environment has work in the pending queue.
func triggerProspectJob(ctx context.Context, svcs Services, logger *slog.Logger) error {
	automation, err := svcs.automations.GetByStage(ctx, DevWorkspaceID, "stage-prospect")
	if err != nil {
		return fmt.Errorf("load prospect automation: %w", err)
	}

	job, err := svcs.dispatch.Trigger(ctx, DevWorkspaceID, automation.ID, model.TriggerManual)
	if err != nil {
		return fmt.Errorf("trigger prospect automation: %w", err)
	}

	logger.InfoContext(ctx, "queued seed job", "job_id", job.ID, "automation_id", automation.ID)
	return nil
}
