package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/service"
)

// CloudHandlers provides HTTP handlers for cloud browser sessions and tasks.
// Besides the raw task endpoint there are convenience endpoints that build
// the task prompt from structured parameters.
type CloudHandlers struct {
	Svc *service.CloudService
}

// CreateSession handles POST /api/cloud/sessions.
func (h *CloudHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var req model.CreateCloudSessionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.WorkspaceID = session.WorkspaceID

	sess, err := h.Svc.CreateSession(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sess)
}

// ListSessions handles GET /api/cloud/sessions.
func (h *CloudHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	sessions, err := h.Svc.ListSessions(r.Context(), session.WorkspaceID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession handles GET /api/cloud/sessions/{id}.
func (h *CloudHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	sess, err := h.Svc.GetSession(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

// RevokeSession handles POST /api/cloud/sessions/{id}/revoke. Revoking twice
// returns the same revoked row.
func (h *CloudHandlers) RevokeSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	sess, err := h.Svc.RevokeSession(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

// CreateTask handles POST /api/cloud/sessions/{id}/tasks with a raw prompt.
func (h *CloudHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var body struct {
		Prompt   string          `json:"prompt"`
		Metadata json.RawMessage `json:"metadata,omitempty"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	task, err := h.Svc.CreateTask(r.Context(), session.WorkspaceID, &model.CreateCloudTaskRequest{
		SessionID: r.PathValue("id"),
		Prompt:    body.Prompt,
		Metadata:  body.Metadata,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/cloud/sessions/{id}/tasks. Non-terminal tasks
// are refreshed from the provider before the list is returned.
func (h *CloudHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	tasks, err := h.Svc.PollSessionTasks(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// GetTask handles GET /api/cloud/tasks/{id}. The read polls the provider for
// non-terminal tasks so callers always see the freshest mirror state.
func (h *CloudHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	task, err := h.Svc.PollTask(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// GetTaskResult handles GET /api/cloud/tasks/{id}/result.
func (h *CloudHandlers) GetTaskResult(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	result, err := h.Svc.TaskResult(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ScrapeProfile handles POST /api/cloud/sessions/{id}/scrape-profile.
func (h *CloudHandlers) ScrapeProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileURL string `json:"profile_url"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ProfileURL) == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("profile_url is required"),
		})
		return
	}

	h.submitPromptTask(w, r, func(platform string) string {
		return service.ScrapeProfilePrompt(platform, body.ProfileURL)
	})
}

// SearchLeads handles POST /api/cloud/sessions/{id}/search-leads.
func (h *CloudHandlers) SearchLeads(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("query is required"),
		})
		return
	}

	h.submitPromptTask(w, r, func(platform string) string {
		return service.SearchLeadsPrompt(platform, body.Query, body.Limit)
	})
}

// ConnectionRequest handles POST /api/cloud/sessions/{id}/connection-request.
func (h *CloudHandlers) ConnectionRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileURL string `json:"profile_url"`
		Note       string `json:"note,omitempty"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ProfileURL) == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("profile_url is required"),
		})
		return
	}

	h.submitPromptTask(w, r, func(platform string) string {
		return service.ConnectionRequestPrompt(platform, body.ProfileURL, body.Note)
	})
}

// submitPromptTask resolves the target session, builds the prompt from the
// session's platform, and submits the task. The session lookup doubles as the
// workspace ownership check.
func (h *CloudHandlers) submitPromptTask(
	w http.ResponseWriter,
	r *http.Request,
	buildPrompt func(platform string) string,
) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	sessionID := r.PathValue("id")
	cloudSess, err := h.Svc.GetSession(r.Context(), session.WorkspaceID, sessionID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	task, err := h.Svc.CreateTask(r.Context(), session.WorkspaceID, &model.CreateCloudTaskRequest{
		SessionID: sessionID,
		Prompt:    buildPrompt(cloudSess.Platform),
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}
