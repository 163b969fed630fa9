package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/relaycrm/outreach-api/internal/core"
	domainauth "github.com/relaycrm/outreach-api/internal/domain/auth"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/mocks"
	"github.com/relaycrm/outreach-api/internal/service"
)

// withTestSession attaches an authenticated admin session for workspaceID to
// the request context, the way the auth middleware would.
func withTestSession(r *http.Request, workspaceID string) *http.Request {
	sess := &domainauth.Session{
		ID:          "sess-1",
		UserID:      "user-1",
		WorkspaceID: workspaceID,
		Role:        domainauth.RoleAdmin,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	return r.WithContext(SetSessionInContext(r.Context(), sess))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newJobHandlers(t *testing.T, repo core.JobRepository) *JobHandlers {
	t.Helper()
	svc, err := service.NewJobService(service.JobServiceOptions{Repo: repo})
	require.NoError(t, err)
	return &JobHandlers{Svc: svc}
}

func TestJobHandlers_ListPending_ClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	// limit=50 in the query must arrive at the repo clamped to the max batch.
	repo.EXPECT().
		ListPending(gomock.Any(), "workspace-1", 5).
		Return([]*model.Job{{ID: "job-1", Status: model.JobStatusPending}}, nil)

	h := newJobHandlers(t, repo)
	req := withTestSession(httptest.NewRequest(http.MethodGet, "/api/jobs/pending?limit=50", nil), "workspace-1")
	rec := httptest.NewRecorder()
	h.ListPending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	jobs, ok := body["jobs"].([]any)
	require.True(t, ok)
	assert.Len(t, jobs, 1)
}

func TestJobHandlers_ListPending_RequiresSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newJobHandlers(t, mocks.NewMockJobRepository(ctrl))
	rec := httptest.NewRecorder()
	h.ListPending(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/pending", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_required", decodeBody(t, rec)["error"])
}

func TestJobHandlers_ReportStatus_UnknownVocabularyRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No repo expectations: the report must be rejected before any write.
	h := newJobHandlers(t, mocks.NewMockJobRepository(ctrl))

	req := httptest.NewRequest(
		http.MethodPost, "/api/jobs/job-1/status",
		strings.NewReader(`{"status":"exploded"}`),
	)
	req.SetPathValue("id", "job-1")
	rec := httptest.NewRecorder()
	h.ReportStatus(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["error"])
}

func TestJobHandlers_ReportStatus_WorkerVocabularyAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params core.UpdateJobStatusParams) (*model.Job, error) {
			assert.Equal(t, "workspace-1", params.WorkspaceID)
			assert.Equal(t, model.JobStatusSuccess, params.Status)
			assert.NotNil(t, params.CompletedAt)
			return &model.Job{ID: params.JobID, WorkspaceID: params.WorkspaceID, Status: params.Status}, nil
		})

	h := newJobHandlers(t, repo)
	req := httptest.NewRequest(
		http.MethodPost, "/api/jobs/job-1/status",
		strings.NewReader(`{"status":"completed","result":{"messages_sent":3}}`),
	)
	req.SetPathValue("id", "job-1")
	rec := httptest.NewRecorder()
	h.ReportStatus(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decodeBody(t, rec)["status"])
}

func TestJobHandlers_GetStatus_ForeignWorkspaceReads404(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().
		GetByID(gomock.Any(), "workspace-2", "job-1").
		Return(nil, apperrors.AccessDenied("job belongs to another workspace"))

	h := newJobHandlers(t, repo)
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-1/status", nil)
	req.SetPathValue("id", "job-1")
	rec := httptest.NewRecorder()
	h.GetStatus(rec, withTestSession(req, "workspace-2"))

	// Cross-workspace lookups read the same as missing resources.
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "resource not found", body["message"])
}

func TestJobHandlers_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().
		Stats(gomock.Any(), "workspace-1").
		Return(&model.JobStats{Pending: 2, Running: 1, Success: 10, Failed: 3}, nil)

	h := newJobHandlers(t, repo)
	req := withTestSession(httptest.NewRequest(http.MethodGet, "/api/jobs/stats", nil), "workspace-1")
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["pending"])
	assert.Equal(t, float64(10), body["success"])
}
