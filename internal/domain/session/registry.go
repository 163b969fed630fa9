// Package session holds the in-memory registry of remote browser sessions.
// Sessions are ephemeral: they live only as long as the process and are never
// persisted.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/relaycrm/outreach-api/internal/domain/model"
)

type entry struct {
	state model.BrowserSession
	// exec serializes command execution against this session. A buffered
	// channel instead of a sync.Mutex so waiters can give up on context
	// cancellation.
	exec chan struct{}
}

// Registry is a lock-protected keyed store of live browser sessions.
// Snapshots returned by read methods are value copies; callers never see the
// internal entries.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry constructs an empty Registry. A nil now falls back to time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*entry),
		now:      now,
	}
}

// Register adds a session. An existing session with the same ID is replaced.
func (r *Registry) Register(sess model.BrowserSession) {
	e := &entry{state: sess, exec: make(chan struct{}, 1)}
	r.mu.Lock()
	r.sessions[sess.ID] = e
	r.mu.Unlock()
}

// Snapshot returns a copy of the session state, if present.
func (r *Registry) Snapshot(id string) (model.BrowserSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return model.BrowserSession{}, false
	}
	return e.state, true
}

// ListByWorkspace returns snapshots of every session belonging to the
// workspace.
func (r *Registry) ListByWorkspace(workspaceID string) []model.BrowserSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.BrowserSession, 0)
	for _, e := range r.sessions {
		if e.state.WorkspaceID == workspaceID {
			out = append(out, e.state)
		}
	}
	return out
}

// Update mutates the session state under the registry lock. It returns false
// if the session is gone.
func (r *Registry) Update(id string, fn func(*model.BrowserSession)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	fn(&e.state)
	return true
}

// Acquire takes the per-session execution slot, blocking until the slot is
// free or ctx is done. The returned release func must be called exactly once.
// Acquire returns ok=false if the session does not exist.
func (r *Registry) Acquire(ctx context.Context, id string) (release func(), ok bool, err error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	select {
	case e.exec <- struct{}{}:
		return func() { <-e.exec }, true, nil
	case <-ctx.Done():
		return nil, true, ctx.Err()
	}
}

// Remove deletes the session and returns its last snapshot. Removing an
// absent session is a no-op, so close stays idempotent.
func (r *Registry) Remove(id string) (model.BrowserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return model.BrowserSession{}, false
	}
	delete(r.sessions, id)
	return e.state, true
}

// EvictIdle removes sessions whose LastUsedAt is older than the cutoff and
// returns their snapshots so the caller can tear down the backing browsers.
// Busy sessions are skipped; their LastUsedAt advances when the command
// finishes.
func (r *Registry) EvictIdle(idleFor time.Duration) []model.BrowserSession {
	cutoff := r.now().Add(-idleFor)

	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []model.BrowserSession
	for id, e := range r.sessions {
		if e.state.Status == model.SessionBusy {
			continue
		}
		if e.state.LastUsedAt.Before(cutoff) {
			evicted = append(evicted, e.state)
			delete(r.sessions, id)
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
