package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/domain/session"
	apperrors "github.com/relaycrm/outreach-api/internal/errors"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
)

// BrowserServiceOptions groups dependencies for BrowserService.
type BrowserServiceOptions struct {
	Registry       *session.Registry   // Required: in-memory session registry
	Backend        core.BrowserBackend // Required: browser backend
	CommandTimeout time.Duration       // Optional: per-command execution timeout
	Logger         *slog.Logger        // Optional: structured logger
	Metrics        statsd.Sink         // Optional: metrics sink (StatsD-compatible)
	Events         core.EventBus       // Optional: workspace event fan-out
}

const defaultCommandTimeout = 60 * time.Second

// BrowserService manages live remote browser sessions.
//
// Sessions exist only in memory for the lifetime of the process. Commands
// against the same session are strictly serialized: a second command waits on
// the session's execution slot until the first finishes or its context is
// cancelled. All lookups are workspace-checked before anything touches the
// backing browser.
type BrowserService struct {
	registry *session.Registry
	backend  core.BrowserBackend
	timeout  time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
	events   core.EventBus

	mu      sync.Mutex
	handles map[string]string // session id -> backend handle
}

// NewBrowserService constructs a new BrowserService.
func NewBrowserService(opts BrowserServiceOptions) (*BrowserService, error) {
	if opts.Registry == nil {
		return nil, errors.New("session registry is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("BrowserBackend is required")
	}

	timeout := opts.CommandTimeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "browser_service")
	}

	return &BrowserService{
		registry: opts.Registry,
		backend:  opts.Backend,
		timeout:  timeout,
		logger:   logger,
		metrics:  opts.Metrics,
		events:   opts.Events,
		handles:  make(map[string]string),
	}, nil
}

// CreateSession opens a new browser session for the caller. The session is
// registered before the backing browser starts so status reads observe the
// initializing state; it moves to ready once the backend confirms the open.
func (s *BrowserService) CreateSession(
	ctx context.Context,
	req *model.CreateBrowserSessionRequest,
) (*model.BrowserSession, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := time.Now().UTC()
	sess := model.BrowserSession{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		UserID:      req.UserID,
		Status:      model.SessionInitializing,
		CurrentURL:  req.StartURL,
		LastUsedAt:  now,
		CreatedAt:   now,
	}
	s.registry.Register(sess)

	handle, err := s.backend.Open(ctx, req.StartURL)
	if err != nil {
		s.registry.Update(sess.ID, func(state *model.BrowserSession) {
			state.Status = model.SessionError
		})
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to open browser session",
				"session_id", sess.ID,
				"workspace_id", req.WorkspaceID,
				"error", err,
			)
		}
		return nil, fmt.Errorf("open browser session: %w", err)
	}

	s.mu.Lock()
	s.handles[sess.ID] = handle
	s.mu.Unlock()

	s.registry.Update(sess.ID, func(state *model.BrowserSession) {
		state.Status = model.SessionReady
	})

	if s.logger != nil {
		s.logger.InfoContext(ctx, "browser session opened",
			"session_id", sess.ID,
			"workspace_id", req.WorkspaceID,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("browser.sessions_opened", 1, nil)
		s.metrics.Gauge("browser.sessions_live", float64(s.registry.Len()), nil)
	}
	s.publish(ctx, req.WorkspaceID, "browser_session.created", sess.ID)

	snapshot, _ := s.registry.Snapshot(sess.ID)
	return &snapshot, nil
}

// GetSession returns a snapshot of one session.
func (s *BrowserService) GetSession(ctx context.Context, workspaceID, id string) (*model.BrowserSession, error) {
	snapshot, err := s.ownedSnapshot(workspaceID, id)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListSessions returns snapshots of the workspace's live sessions.
func (s *BrowserService) ListSessions(ctx context.Context, workspaceID string) []model.BrowserSession {
	return s.registry.ListByWorkspace(workspaceID)
}

// ExecuteCommand runs one command inside a session. Execution is serialized
// per session: concurrent callers queue on the session's execution slot in
// arrival order, and a waiter whose context expires gives up without running.
// A command that outlives the configured timeout fails with a timeout error
// and flips the session into the error state.
func (s *BrowserService) ExecuteCommand(
	ctx context.Context,
	workspaceID, id string,
	cmd model.BrowserCommand,
) (*model.CommandResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.ownedSnapshot(workspaceID, id); err != nil {
		return nil, err
	}

	release, ok, err := s.registry.Acquire(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "gave up waiting for the session to become free")
	}
	if !ok {
		return nil, apperrors.NotFoundf("Browser session with id %s not found", id)
	}
	defer release()

	// Re-check under the execution slot: the session may have been closed or
	// errored while this caller waited its turn.
	snapshot, err := s.ownedSnapshot(workspaceID, id)
	if err != nil {
		return nil, err
	}
	if snapshot.Status != model.SessionReady {
		return nil, apperrors.NotReadyf("browser session is %s", snapshot.Status)
	}

	s.registry.Update(id, func(state *model.BrowserSession) {
		state.Status = model.SessionBusy
	})

	s.mu.Lock()
	handle := s.handles[id]
	s.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, execErr := s.backend.Execute(execCtx, handle, cmd)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.Timing("browser.command_duration", elapsed, map[string]string{"type": cmd.Type})
	}

	if execErr != nil {
		s.registry.Update(id, func(state *model.BrowserSession) {
			state.Status = model.SessionError
			state.LastUsedAt = time.Now().UTC()
		})
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "browser command failed",
				"session_id", id,
				"type", cmd.Type,
				"error", execErr,
			)
		}
		if errors.Is(execErr, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(execErr, apperrors.ErrCodeTimeout,
				fmt.Sprintf("command did not finish within %s", s.timeout))
		}
		return nil, fmt.Errorf("execute browser command: %w", execErr)
	}

	s.registry.Update(id, func(state *model.BrowserSession) {
		state.Status = model.SessionReady
		state.LastUsedAt = time.Now().UTC()
		if result.CurrentURL != "" {
			state.CurrentURL = result.CurrentURL
		}
	})

	if result.Duration == 0 {
		result.Duration = elapsed
	}
	return result, nil
}

// CloseSession tears down a session and its backing browser. The returned
// bool reports whether this call removed the session; closing a session that
// does not exist returns false without error so retried closes stay safe.
func (s *BrowserService) CloseSession(ctx context.Context, workspaceID, id string) (bool, error) {
	snapshot, ok := s.registry.Snapshot(id)
	if !ok {
		return false, nil
	}
	if snapshot.WorkspaceID != workspaceID {
		return false, apperrors.AccessDeniedf("browser session %s belongs to another workspace", id)
	}

	if _, ok := s.registry.Remove(id); !ok {
		return false, nil
	}
	s.closeBackend(ctx, id)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "browser session closed",
			"session_id", id,
			"workspace_id", workspaceID,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("browser.sessions_closed", 1, nil)
		s.metrics.Gauge("browser.sessions_live", float64(s.registry.Len()), nil)
	}
	s.publish(ctx, workspaceID, "browser_session.closed", id)
	return true, nil
}

// EvictIdle removes sessions idle longer than idleFor and tears down their
// backing browsers. Busy sessions are never evicted. Returns the number of
// sessions removed.
func (s *BrowserService) EvictIdle(ctx context.Context, idleFor time.Duration) int {
	evicted := s.registry.EvictIdle(idleFor)
	for _, sess := range evicted {
		s.closeBackend(ctx, sess.ID)
		s.publish(ctx, sess.WorkspaceID, "browser_session.closed", sess.ID)
		if s.logger != nil {
			s.logger.InfoContext(ctx, "evicted idle browser session",
				"session_id", sess.ID,
				"workspace_id", sess.WorkspaceID,
				"last_used_at", sess.LastUsedAt,
			)
		}
	}
	if s.metrics != nil && len(evicted) > 0 {
		s.metrics.Count("browser.sessions_evicted", int64(len(evicted)), nil)
		s.metrics.Gauge("browser.sessions_live", float64(s.registry.Len()), nil)
	}
	return len(evicted)
}

// ownedSnapshot loads a session snapshot and verifies workspace ownership.
// The existence check runs first so a caller probing another workspace's
// session id gets the access error, which the HTTP layer renders the same as
// not found.
func (s *BrowserService) ownedSnapshot(workspaceID, id string) (*model.BrowserSession, error) {
	snapshot, ok := s.registry.Snapshot(id)
	if !ok {
		return nil, apperrors.NotFoundf("Browser session with id %s not found", id)
	}
	if snapshot.WorkspaceID != workspaceID {
		return nil, apperrors.AccessDeniedf("browser session %s belongs to another workspace", id)
	}
	return &snapshot, nil
}

func (s *BrowserService) publish(ctx context.Context, workspaceID, eventType, sessionID string) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(struct {
		SessionID string `json:"session_id"`
	}{SessionID: sessionID})
	if err != nil {
		return
	}
	s.events.Publish(ctx, workspaceID, core.Event{Type: eventType, Data: payload})
}

// closeBackend releases the backend browser for a session, logging failures
// instead of surfacing them; the registry entry is already gone.
func (s *BrowserService) closeBackend(ctx context.Context, id string) {
	s.mu.Lock()
	handle, ok := s.handles[id]
	delete(s.handles, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.backend.Close(ctx, handle); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to close backend browser",
			"session_id", id,
			"error", err,
		)
	}
}
