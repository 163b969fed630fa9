package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/relaycrm/outreach-api/internal/domain/auth"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/mocks"
	"github.com/relaycrm/outreach-api/internal/service"
)

func TestNewRouter_Healthz(t *testing.T) {
	router := NewRouter(RouterServices{})

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestNewRouter_SkipsUnconfiguredServices(t *testing.T) {
	// With no cloud service the cloud surface does not exist at all.
	router := NewRouter(RouterServices{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cloud/sessions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_APIRequiresSessionCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobSvc, err := service.NewJobService(service.JobServiceOptions{Repo: mocks.NewMockJobRepository(ctrl)})
	require.NoError(t, err)

	router := NewRouter(RouterServices{
		Jobs: jobSvc,
		Auth: &mockAuthServiceForMiddleware{},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/pending", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewRouter_AdminRouteRejectsNonAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobSvc, err := service.NewJobService(service.JobServiceOptions{Repo: mocks.NewMockJobRepository(ctrl)})
	require.NoError(t, err)
	dispatchSvc, err := service.NewDispatchService(service.DispatchServiceOptions{
		Automations: mocks.NewMockAutomationRepository(ctrl),
		Leads:       mocks.NewMockLeadRepository(ctrl),
		Jobs:        jobSvc,
	})
	require.NoError(t, err)

	auth := &mockAuthServiceForMiddleware{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return &domainauth.Session{
				ID:          sessionID,
				UserID:      "user-1",
				WorkspaceID: "workspace-1",
				Role:        domainauth.RoleUser,
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		},
	}
	router := NewRouter(RouterServices{Dispatch: dispatchSvc, Jobs: jobSvc, Auth: auth})

	req := httptest.NewRequest(http.MethodPost, "/api/automations/auto-1/trigger", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewRouter_AuthenticatedWorkerPoll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().
		ListPending(gomock.Any(), "workspace-1", 5).
		Return([]*model.Job{}, nil)

	jobSvc, err := service.NewJobService(service.JobServiceOptions{Repo: repo})
	require.NoError(t, err)

	auth := &mockAuthServiceForMiddleware{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return &domainauth.Session{
				ID:          sessionID,
				UserID:      "worker-1",
				WorkspaceID: "workspace-1",
				Role:        domainauth.RoleUser,
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		},
	}
	router := NewRouter(RouterServices{Jobs: jobSvc, Auth: auth})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/pending", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
