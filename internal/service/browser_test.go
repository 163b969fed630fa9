package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/domain/session"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/mocks"
)

func newTestBrowserService(t *testing.T, backend *mocks.MockBrowserBackend) *BrowserService {
	t.Helper()
	svc, err := NewBrowserService(BrowserServiceOptions{
		Registry: session.NewRegistry(nil),
		Backend:  backend,
	})
	require.NoError(t, err)
	return svc
}

func openTestSession(t *testing.T, svc *BrowserService, backend *mocks.MockBrowserBackend, workspaceID string) *model.BrowserSession {
	t.Helper()
	backend.EXPECT().Open(gomock.Any(), gomock.Any()).Return("handle-"+workspaceID, nil)
	sess, err := svc.CreateSession(context.Background(), &model.CreateBrowserSessionRequest{
		WorkspaceID: workspaceID,
		UserID:      "user-1",
		StartURL:    "https://www.linkedin.com/feed/",
	})
	require.NoError(t, err)
	return sess
}

func TestBrowserService_CreateSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)

	sess := openTestSession(t, svc, backend, "workspace-1")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, model.SessionReady, sess.Status)
	assert.Equal(t, "https://www.linkedin.com/feed/", sess.CurrentURL)
}

func TestBrowserService_CreateSession_BackendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	backend.EXPECT().Open(gomock.Any(), gomock.Any()).Return("", assert.AnError)

	svc := newTestBrowserService(t, backend)
	_, err := svc.CreateSession(context.Background(), &model.CreateBrowserSessionRequest{
		WorkspaceID: "workspace-1",
		UserID:      "user-1",
	})
	require.Error(t, err)

	// The session stays visible in the error state so the caller can close it.
	sessions := svc.ListSessions(context.Background(), "workspace-1")
	require.Len(t, sessions, 1)
	assert.Equal(t, model.SessionError, sessions[0].Status)
}

func TestBrowserService_GetSession_WorkspaceIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	_, err := svc.GetSession(context.Background(), "workspace-2", sess.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsAccessDenied(err))

	_, err = svc.GetSession(context.Background(), "workspace-1", "no-such-session")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBrowserService_ExecuteCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	cmd := model.BrowserCommand{Type: "navigate", Payload: json.RawMessage(`{"url":"https://www.linkedin.com/in/johndoe"}`)}
	backend.EXPECT().
		Execute(gomock.Any(), "handle-workspace-1", cmd).
		Return(&model.CommandResult{CurrentURL: "https://www.linkedin.com/in/johndoe"}, nil)

	result, err := svc.ExecuteCommand(context.Background(), "workspace-1", sess.ID, cmd)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/johndoe", result.CurrentURL)

	// The session is ready again and its current URL advanced.
	after, err := svc.GetSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionReady, after.Status)
	assert.Equal(t, "https://www.linkedin.com/in/johndoe", after.CurrentURL)
}

func TestBrowserService_ExecuteCommand_Serialized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	var mu sync.Mutex
	var inFlight, maxInFlight int
	backend.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, model.BrowserCommand) (*model.CommandResult, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return &model.CommandResult{}, nil
		}).
		Times(4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ExecuteCommand(context.Background(), "workspace-1", sess.ID, model.BrowserCommand{Type: "scroll"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "commands against one session must never overlap")
}

func TestBrowserService_ExecuteCommand_WaiterGivesUpOnContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	started := make(chan struct{})
	finish := make(chan struct{})
	backend.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, model.BrowserCommand) (*model.CommandResult, error) {
			close(started)
			<-finish
			return &model.CommandResult{}, nil
		})

	go func() {
		_, _ = svc.ExecuteCommand(context.Background(), "workspace-1", sess.ID, model.BrowserCommand{Type: "scroll"})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.ExecuteCommand(ctx, "workspace-1", sess.ID, model.BrowserCommand{Type: "click"})
	close(finish)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeTimeout, appErr.Code)
}

func TestBrowserService_ExecuteCommand_BackendErrorFlipsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	backend.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	_, err := svc.ExecuteCommand(context.Background(), "workspace-1", sess.ID, model.BrowserCommand{Type: "click"})
	require.Error(t, err)

	after, err := svc.GetSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionError, after.Status)

	// The errored session accepts no further commands.
	_, err = svc.ExecuteCommand(context.Background(), "workspace-1", sess.ID, model.BrowserCommand{Type: "click"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotReady(err))
}

func TestBrowserService_CloseSession_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	backend.EXPECT().Close(gomock.Any(), "handle-workspace-1").Return(nil)
	closed, err := svc.CloseSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	assert.True(t, closed)

	// Second close is a no-op: no backend call, no error, reported absent.
	closed, err = svc.CloseSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestBrowserService_CloseSession_OtherWorkspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc := newTestBrowserService(t, backend)
	sess := openTestSession(t, svc, backend, "workspace-1")

	closed, err := svc.CloseSession(context.Background(), "workspace-2", sess.ID)
	require.Error(t, err)
	assert.False(t, closed)
	assert.True(t, apperrors.IsAccessDenied(err))
}

func TestBrowserService_EvictIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	past := time.Now().Add(-time.Hour)
	registry := session.NewRegistry(nil)
	registry.Register(model.BrowserSession{
		ID: "stale", WorkspaceID: "workspace-1", Status: model.SessionReady, LastUsedAt: past,
	})
	registry.Register(model.BrowserSession{
		ID: "fresh", WorkspaceID: "workspace-1", Status: model.SessionReady, LastUsedAt: time.Now(),
	})
	registry.Register(model.BrowserSession{
		ID: "busy", WorkspaceID: "workspace-1", Status: model.SessionBusy, LastUsedAt: past,
	})

	backend := mocks.NewMockBrowserBackend(ctrl)
	svc, err := NewBrowserService(BrowserServiceOptions{Registry: registry, Backend: backend})
	require.NoError(t, err)

	evicted := svc.EvictIdle(context.Background(), 30*time.Minute)
	assert.Equal(t, 1, evicted)

	_, ok := registry.Snapshot("stale")
	assert.False(t, ok)
	_, ok = registry.Snapshot("fresh")
	assert.True(t, ok)
	_, ok = registry.Snapshot("busy")
	assert.True(t, ok)
}

func TestBrowserService_PublishesLifecycleEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBrowserBackend(ctrl)
	events := mocks.NewMockEventBus(ctrl)
	svc, err := NewBrowserService(BrowserServiceOptions{
		Registry: session.NewRegistry(nil),
		Backend:  backend,
		Events:   events,
	})
	require.NoError(t, err)

	var types []string
	events.EXPECT().
		Publish(gomock.Any(), "workspace-1", gomock.Any()).
		Do(func(_ context.Context, _ string, event core.Event) {
			types = append(types, event.Type)
		}).
		Times(2)

	sess := openTestSession(t, svc, backend, "workspace-1")

	backend.EXPECT().Close(gomock.Any(), "handle-workspace-1").Return(nil)
	closed, err := svc.CloseSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	require.True(t, closed)

	assert.Equal(t, []string{"browser_session.created", "browser_session.closed"}, types)

	// A retried close publishes nothing further.
	closed, err = svc.CloseSession(context.Background(), "workspace-1", sess.ID)
	require.NoError(t, err)
	assert.False(t, closed)
}
