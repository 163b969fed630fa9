package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/mocks"
)

type dispatchFixture struct {
	automations *mocks.MockAutomationRepository
	leads       *mocks.MockLeadRepository
	jobs        *mocks.MockJobRepository
	svc         *DispatchService
}

func newDispatchFixture(t *testing.T, ctrl *gomock.Controller) *dispatchFixture {
	t.Helper()

	automations := mocks.NewMockAutomationRepository(ctrl)
	leads := mocks.NewMockLeadRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)

	jobSvc, err := NewJobService(JobServiceOptions{Repo: jobs})
	require.NoError(t, err)

	svc, err := NewDispatchService(DispatchServiceOptions{
		Automations: automations,
		Leads:       leads,
		Jobs:        jobSvc,
	})
	require.NoError(t, err)

	return &dispatchFixture{automations: automations, leads: leads, jobs: jobs, svc: svc}
}

func enabledAutomation() *model.Automation {
	return &model.Automation{
		ID:          "automation-1",
		WorkspaceID: "workspace-1",
		StageID:     "stage-1",
		Name:        "Connect with new leads",
		Platform:    "linkedin",
		Actions:     json.RawMessage(`[{"type":"visit"},{"type":"connect"}]`),
		Config:      json.RawMessage(`{"delay_ms":2500}`),
		Enabled:     true,
	}
}

func TestDispatchService_CreateAutomation_RejectsUnknownPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	_, err := f.svc.CreateAutomation(context.Background(), &model.CreateAutomationRequest{
		WorkspaceID: "workspace-1",
		StageID:     "stage-1",
		Name:        "bad",
		Platform:    "myspace",
		Actions:     json.RawMessage(`[]`),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDispatchService_Trigger_BuildsWorkItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	automation := enabledAutomation()

	f.automations.EXPECT().
		GetByID(gomock.Any(), "workspace-1", "automation-1").
		Return(automation, nil)
	f.leads.EXPECT().
		ListByStage(gomock.Any(), "workspace-1", "stage-1").
		Return([]*model.Lead{
			{ID: "lead-1", Name: "John Doe", Platform: "linkedin", ProfileRef: "johndoe", AvatarURL: "https://cdn.example.com/a.png"},
			{ID: "lead-2", Name: "Jane Doe", Platform: "linkedin", ProfileRef: "https://www.linkedin.com/in/jane-doe/"},
			// Wrong platform: filtered out before canonicalization.
			{ID: "lead-3", Name: "Other", Platform: "instagram", ProfileRef: "other"},
			// Unresolvable reference: skipped, not fatal.
			{ID: "lead-4", Name: "Broken", Platform: "linkedin", ProfileRef: "https://evil.example.com/in/x"},
		}, nil)
	f.jobs.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
			require.NoError(t, req.Validate())
			assert.Equal(t, "automation-1", req.AutomationID)
			assert.Equal(t, model.TriggerManual, req.TriggerType)
			require.Len(t, req.Payload.Items, 2)
			assert.Equal(t, "https://www.linkedin.com/in/johndoe", req.Payload.Items[0].ProfileURL)
			assert.Equal(t, "John Doe", req.Payload.Items[0].Name)
			assert.Equal(t, "https://www.linkedin.com/in/jane-doe/", req.Payload.Items[1].ProfileURL)
			assert.JSONEq(t, string(automation.Actions), string(req.Payload.Actions))
			return &model.Job{ID: "job-1", WorkspaceID: "workspace-1", Status: model.JobStatusPending}, nil
		})

	job, err := f.svc.Trigger(context.Background(), "workspace-1", "automation-1", model.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestDispatchService_Trigger_NoEligibleLeads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	f.automations.EXPECT().
		GetByID(gomock.Any(), "workspace-1", "automation-1").
		Return(enabledAutomation(), nil)
	f.leads.EXPECT().
		ListByStage(gomock.Any(), "workspace-1", "stage-1").
		Return([]*model.Lead{
			{ID: "lead-1", Platform: "instagram", ProfileRef: "someone"},
		}, nil)

	_, err := f.svc.Trigger(context.Background(), "workspace-1", "automation-1", model.TriggerManual)
	require.ErrorIs(t, err, ErrNoEligibleLeads)
}

func TestDispatchService_Trigger_DisabledAutomation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	automation := enabledAutomation()
	automation.Enabled = false
	f.automations.EXPECT().
		GetByID(gomock.Any(), "workspace-1", "automation-1").
		Return(automation, nil)

	_, err := f.svc.Trigger(context.Background(), "workspace-1", "automation-1", model.TriggerManual)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDispatchService_Trigger_AutomationNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	f.automations.EXPECT().
		GetByID(gomock.Any(), "workspace-1", "missing").
		Return(nil, apperrors.NotFound("Automation with id missing not found"))

	_, err := f.svc.Trigger(context.Background(), "workspace-1", "missing", model.TriggerManual)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDispatchService_DeleteAutomation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl)
	f.automations.EXPECT().Delete(gomock.Any(), "workspace-1", "automation-1").Return(true, nil)
	require.NoError(t, f.svc.DeleteAutomation(context.Background(), "workspace-1", "automation-1"))

	f.automations.EXPECT().Delete(gomock.Any(), "workspace-1", "gone").Return(false, nil)
	err := f.svc.DeleteAutomation(context.Background(), "workspace-1", "gone")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
