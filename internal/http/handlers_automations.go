// Package httpx provides HTTP handlers and utilities for the outreach API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AutomationHandlers provides HTTP handlers for automation management and
// triggering. The workspace always comes from the caller's session; a
// workspace id in the request body is ignored.
type AutomationHandlers struct {
	Svc *service.DispatchService
}

// Create handles POST /api/automations.
func (h *AutomationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var req model.CreateAutomationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.WorkspaceID = session.WorkspaceID

	automation, err := h.Svc.CreateAutomation(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, automation)
}

// List handles GET /api/automations.
func (h *AutomationHandlers) List(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	automations, err := h.Svc.ListAutomations(r.Context(), session.WorkspaceID, limit, offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"automations": automations})
}

// GetByID handles GET /api/automations/{id}.
func (h *AutomationHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	automation, err := h.Svc.GetAutomation(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, automation)
}

// Delete handles DELETE /api/automations/{id}.
func (h *AutomationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	if err := h.Svc.DeleteAutomation(r.Context(), session.WorkspaceID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Trigger handles POST /api/automations/{id}/trigger. It expands the
// automation's target leads into work items and enqueues one job.
func (h *AutomationHandlers) Trigger(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	trigger := model.TriggerManual
	if r.ContentLength > 0 {
		var body struct {
			TriggerType model.TriggerType `json:"trigger_type"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		if body.TriggerType != "" {
			trigger = body.TriggerType
		}
	}

	job, err := h.Svc.Trigger(r.Context(), session.WorkspaceID, r.PathValue("id"), trigger)
	if err != nil {
		if errors.Is(err, service.ErrNoEligibleLeads) {
			WriteJSON(w, http.StatusOK, map[string]any{
				"job":     nil,
				"message": "no eligible leads for this automation",
			})
			return
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"job": job})
}

// writeMissingSession reports a request that reached a handler without a
// session in context. The auth middleware normally prevents this.
func writeMissingSession(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}
