package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/domain/session"
	"github.com/relaycrm/outreach-api/internal/mocks"
	"github.com/relaycrm/outreach-api/internal/service"
)

func newBrowserHandlers(t *testing.T, backend *mocks.MockBrowserBackend) *BrowserHandlers {
	t.Helper()
	svc, err := service.NewBrowserService(service.BrowserServiceOptions{
		Registry:       session.NewRegistry(nil),
		Backend:        backend,
		CommandTimeout: time.Second,
	})
	require.NoError(t, err)
	return &BrowserHandlers{Svc: svc}
}

func TestBrowserHandlers_SessionLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	backend.EXPECT().
		Open(gomock.Any(), "https://www.linkedin.com").
		Return("handle-1", nil)
	backend.EXPECT().
		Execute(gomock.Any(), "handle-1", gomock.Any()).
		Return(&model.CommandResult{CurrentURL: "https://www.linkedin.com/feed"}, nil)
	backend.EXPECT().
		Close(gomock.Any(), "handle-1").
		Return(nil)

	h := newBrowserHandlers(t, backend)

	// Create.
	req := withTestSession(httptest.NewRequest(
		http.MethodPost, "/api/browser/sessions",
		strings.NewReader(`{"start_url":"https://www.linkedin.com"}`),
	), "workspace-1")
	rec := httptest.NewRecorder()
	h.CreateSession(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody(t, rec)
	sessionID, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "workspace-1", created["workspace_id"])

	// Execute a command against the new session.
	req = httptest.NewRequest(
		http.MethodPost, "/api/browser/sessions/"+sessionID+"/execute",
		strings.NewReader(`{"type":"navigate","payload":{"url":"https://www.linkedin.com/feed"}}`),
	)
	req.SetPathValue("id", sessionID)
	rec = httptest.NewRecorder()
	h.ExecuteCommand(rec, withTestSession(req, "workspace-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.linkedin.com/feed", decodeBody(t, rec)["current_url"])

	// Close.
	req = httptest.NewRequest(http.MethodDelete, "/api/browser/sessions/"+sessionID, nil)
	req.SetPathValue("id", sessionID)
	rec = httptest.NewRecorder()
	h.CloseSession(rec, withTestSession(req, "workspace-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["closed"])
}

func TestBrowserHandlers_ExecuteCommand_ForeignWorkspaceReads404(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	backend.EXPECT().
		Open(gomock.Any(), gomock.Any()).
		Return("handle-1", nil)

	h := newBrowserHandlers(t, backend)

	req := withTestSession(httptest.NewRequest(http.MethodPost, "/api/browser/sessions", nil), "workspace-1")
	rec := httptest.NewRecorder()
	h.CreateSession(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := decodeBody(t, rec)["id"].(string)

	// A caller from another workspace must not learn the session exists.
	req = httptest.NewRequest(
		http.MethodPost, "/api/browser/sessions/"+sessionID+"/execute",
		strings.NewReader(`{"type":"navigate"}`),
	)
	req.SetPathValue("id", sessionID)
	rec = httptest.NewRecorder()
	h.ExecuteCommand(rec, withTestSession(req, "workspace-2"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decodeBody(t, rec)["message"])
}

func TestBrowserHandlers_ExecuteCommand_MissingType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newBrowserHandlers(t, mocks.NewMockBrowserBackend(ctrl))

	req := httptest.NewRequest(
		http.MethodPost, "/api/browser/sessions/sess-1/execute",
		strings.NewReader(`{"payload":{}}`),
	)
	req.SetPathValue("id", "sess-1")
	rec := httptest.NewRecorder()
	h.ExecuteCommand(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrowserHandlers_CloseSession_UnknownIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newBrowserHandlers(t, mocks.NewMockBrowserBackend(ctrl))

	req := httptest.NewRequest(http.MethodDelete, "/api/browser/sessions/never-existed", nil)
	req.SetPathValue("id", "never-existed")
	rec := httptest.NewRecorder()
	h.CloseSession(rec, withTestSession(req, "workspace-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["closed"])
}

func TestBrowserHandlers_ListSessions_ScopedToWorkspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	backend.EXPECT().Open(gomock.Any(), gomock.Any()).Return("handle-1", nil)
	backend.EXPECT().Open(gomock.Any(), gomock.Any()).Return("handle-2", nil)

	h := newBrowserHandlers(t, backend)
	for _, ws := range []string{"workspace-1", "workspace-2"} {
		req := withTestSession(httptest.NewRequest(http.MethodPost, "/api/browser/sessions", nil), ws)
		rec := httptest.NewRecorder()
		h.CreateSession(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := withTestSession(httptest.NewRequest(http.MethodGet, "/api/browser/sessions", nil), "workspace-1")
	rec := httptest.NewRecorder()
	h.ListSessions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	sessions, ok := decodeBody(t, rec)["sessions"].([]any)
	require.True(t, ok)
	require.Len(t, sessions, 1)
	first, ok := sessions[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "workspace-1", first["workspace_id"])
}
