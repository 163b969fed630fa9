package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/mocks"
	"github.com/relaycrm/outreach-api/internal/service"
)

type cloudHandlerMocks struct {
	repo     *mocks.MockCloudRepository
	provider *mocks.MockAutomationProvider
}

func newCloudHandlers(t *testing.T, ctrl *gomock.Controller) (*CloudHandlers, cloudHandlerMocks) {
	t.Helper()
	m := cloudHandlerMocks{
		repo:     mocks.NewMockCloudRepository(ctrl),
		provider: mocks.NewMockAutomationProvider(ctrl),
	}
	svc, err := service.NewCloudService(service.CloudServiceOptions{
		Repo:     m.repo,
		Provider: m.provider,
	})
	require.NoError(t, err)
	return &CloudHandlers{Svc: svc}, m
}

func activeCloudSession(workspaceID string) *model.CloudSession {
	return &model.CloudSession{
		ID:          "csess-1",
		WorkspaceID: workspaceID,
		Platform:    "linkedin",
		Status:      model.CloudSessionActive,
		ProviderID:  "prov-sess-1",
	}
}

func TestCloudHandlers_CreateSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	m.provider.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		Return(&core.ProviderSession{ID: "prov-sess-1"}, nil)
	m.repo.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, sess *model.CloudSession) (*model.CloudSession, error) {
			assert.Equal(t, "workspace-1", sess.WorkspaceID)
			assert.Equal(t, "prov-sess-1", sess.ProviderID)
			sess.ID = "csess-1"
			sess.Status = model.CloudSessionActive
			return sess, nil
		})

	req := withTestSession(httptest.NewRequest(
		http.MethodPost, "/api/cloud/sessions",
		strings.NewReader(`{"platform":"linkedin","connector_ids":["conn-1"]}`),
	), "workspace-1")
	rec := httptest.NewRecorder()
	h.CreateSession(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "csess-1", body["id"])
	assert.Equal(t, "active", body["status"])
}

func TestCloudHandlers_CreateTask_RawPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	m.repo.EXPECT().
		GetSession(gomock.Any(), "workspace-1", "csess-1").
		Return(activeCloudSession("workspace-1"), nil)
	m.provider.EXPECT().
		CreateTask(gomock.Any(), "prov-sess-1", "Visit the profile and summarise it.").
		Return(&core.ProviderTask{ID: "prov-task-1", Status: "queued"}, nil)
	m.repo.EXPECT().
		CreateTask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, task *model.CloudTask) (*model.CloudTask, error) {
			assert.Equal(t, model.TaskStatusQueued, task.Status)
			task.ID = "task-1"
			return task, nil
		})
	m.repo.EXPECT().TouchSession(gomock.Any(), "csess-1").Return(nil)

	req := httptest.NewRequest(
		http.MethodPost, "/api/cloud/sessions/csess-1/tasks",
		strings.NewReader(`{"prompt":"Visit the profile and summarise it."}`),
	)
	req.SetPathValue("id", "csess-1")
	rec := httptest.NewRecorder()
	h.CreateTask(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "task-1", decodeBody(t, rec)["id"])
}

func TestCloudHandlers_CreateTask_RevokedSessionConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	revoked := activeCloudSession("workspace-1")
	revoked.Status = model.CloudSessionRevoked
	m.repo.EXPECT().
		GetSession(gomock.Any(), "workspace-1", "csess-1").
		Return(revoked, nil)

	req := httptest.NewRequest(
		http.MethodPost, "/api/cloud/sessions/csess-1/tasks",
		strings.NewReader(`{"prompt":"anything"}`),
	)
	req.SetPathValue("id", "csess-1")
	rec := httptest.NewRecorder()
	h.CreateTask(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeBody(t, rec)["error"])
}

func TestCloudHandlers_GetTaskResult_NotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	m.repo.EXPECT().
		GetTask(gomock.Any(), "workspace-1", "task-1").
		Return(&model.CloudTask{
			ID:         "task-1",
			SessionID:  "csess-1",
			ProviderID: "prov-task-1",
			Status:     model.TaskStatusRunning,
		}, nil)
	// The service re-resolves the owning session before trusting the task row.
	m.repo.EXPECT().
		GetSession(gomock.Any(), "workspace-1", "csess-1").
		Return(activeCloudSession("workspace-1"), nil)
	// The poll refreshes from the provider; still running.
	m.provider.EXPECT().
		GetTask(gomock.Any(), "prov-task-1").
		Return(&core.ProviderTask{ID: "prov-task-1", Status: "in_progress"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cloud/tasks/task-1/result", nil)
	req.SetPathValue("id", "task-1")
	rec := httptest.NewRecorder()
	h.GetTaskResult(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_ready", decodeBody(t, rec)["error"])
}

func TestCloudHandlers_GetTask_ForeignWorkspaceReads404(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	m.repo.EXPECT().
		GetTask(gomock.Any(), "workspace-2", "task-1").
		Return(nil, apperrors.AccessDenied("task belongs to another workspace"))

	req := httptest.NewRequest(http.MethodGet, "/api/cloud/tasks/task-1", nil)
	req.SetPathValue("id", "task-1")
	rec := httptest.NewRecorder()
	h.GetTask(rec, withTestSession(req, "workspace-2"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decodeBody(t, rec)["message"])
}

func TestCloudHandlers_ScrapeProfile_BuildsPromptFromSessionPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	// submitPromptTask looks the session up once for the platform, then
	// CreateTask loads it again for the ownership and status checks.
	m.repo.EXPECT().
		GetSession(gomock.Any(), "workspace-1", "csess-1").
		Return(activeCloudSession("workspace-1"), nil).
		Times(2)
	m.provider.EXPECT().
		CreateTask(gomock.Any(), "prov-sess-1", gomock.Any()).
		DoAndReturn(func(_ any, _ string, prompt string) (*core.ProviderTask, error) {
			assert.Contains(t, prompt, "https://www.linkedin.com/in/johndoe")
			assert.Contains(t, prompt, "LinkedIn")
			return &core.ProviderTask{ID: "prov-task-1", Status: "queued"}, nil
		})
	m.repo.EXPECT().
		CreateTask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, task *model.CloudTask) (*model.CloudTask, error) {
			task.ID = "task-1"
			return task, nil
		})
	m.repo.EXPECT().TouchSession(gomock.Any(), "csess-1").Return(nil)

	req := httptest.NewRequest(
		http.MethodPost, "/api/cloud/sessions/csess-1/scrape-profile",
		strings.NewReader(`{"profile_url":"https://www.linkedin.com/in/johndoe"}`),
	)
	req.SetPathValue("id", "csess-1")
	rec := httptest.NewRecorder()
	h.ScrapeProfile(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCloudHandlers_ScrapeProfile_RequiresProfileURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newCloudHandlers(t, ctrl)

	req := httptest.NewRequest(
		http.MethodPost, "/api/cloud/sessions/csess-1/scrape-profile",
		strings.NewReader(`{"profile_url":"  "}`),
	)
	req.SetPathValue("id", "csess-1")
	rec := httptest.NewRecorder()
	h.ScrapeProfile(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCloudHandlers_RevokeSession_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newCloudHandlers(t, ctrl)
	revoked := activeCloudSession("workspace-1")
	revoked.Status = model.CloudSessionRevoked
	// Already revoked: no provider call, the stored row comes straight back.
	m.repo.EXPECT().
		GetSession(gomock.Any(), "workspace-1", "csess-1").
		Return(revoked, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cloud/sessions/csess-1/revoke", nil)
	req.SetPathValue("id", "csess-1")
	rec := httptest.NewRecorder()
	h.RevokeSession(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked", decodeBody(t, rec)["status"])
}
