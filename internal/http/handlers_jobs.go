package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/relaycrm/outreach-api/internal/domain/job"
	"github.com/relaycrm/outreach-api/internal/service"
)

// JobHandlers provides HTTP handlers for the job queue worker surface.
// Workers poll for pending jobs and report status transitions back; all
// operations are scoped to the caller's workspace.
type JobHandlers struct {
	Svc *service.JobService
}

// ListPending handles GET /api/jobs/pending?limit=N.
//
// The read does not reserve anything: the same pending jobs stay visible to
// every poll until a worker reports them running or terminal. The limit is
// resolved against the service batch policy, so an absent or oversized limit
// is clamped rather than rejected.
func (h *JobHandlers) ListPending(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	limit := parseIntQuery(r, "limit", job.DefaultBatchSize)
	jobs, err := h.Svc.ListPending(r.Context(), session.WorkspaceID, limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// GetStatus handles GET /api/jobs/{id}/status.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	status, err := h.Svc.GetStatus(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// ReportStatus handles POST /api/jobs/{id}/status.
//
// The body carries the worker's reported status in whatever vocabulary the
// worker speaks; the service maps it onto the canonical set and rejects
// anything outside it. Reports against an already terminal job return the
// stored row unchanged.
func (h *JobHandlers) ReportStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var body struct {
		Status string          `json:"status"`
		Result json.RawMessage `json:"result,omitempty"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	updated, err := h.Svc.ReportStatus(r.Context(), session.WorkspaceID, r.PathValue("id"), body.Status, body.Result)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Stats handles GET /api/jobs/stats.
func (h *JobHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	stats, err := h.Svc.Stats(r.Context(), session.WorkspaceID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
