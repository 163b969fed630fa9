package httpx

import (
	"net/http"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/service"
)

// BrowserHandlers provides HTTP handlers for remote browser sessions. The
// sessions live in process memory; handlers only translate between the wire
// and the service.
type BrowserHandlers struct {
	Svc *service.BrowserService
}

// CreateSession handles POST /api/browser/sessions.
func (h *BrowserHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var body struct {
		StartURL string `json:"start_url,omitempty"`
	}
	if r.ContentLength > 0 && !DecodeJSON(w, r, &body) {
		return
	}

	sess, err := h.Svc.CreateSession(r.Context(), &model.CreateBrowserSessionRequest{
		WorkspaceID: session.WorkspaceID,
		UserID:      session.UserID,
		StartURL:    body.StartURL,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sess)
}

// ListSessions handles GET /api/browser/sessions.
func (h *BrowserHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	sessions := h.Svc.ListSessions(r.Context(), session.WorkspaceID)
	WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession handles GET /api/browser/sessions/{id}.
func (h *BrowserHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
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

// ExecuteCommand handles POST /api/browser/sessions/{id}/execute.
//
// Commands against the same session are serialized; a caller whose turn does
// not come before its request context expires gets a timeout.
func (h *BrowserHandlers) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	var cmd model.BrowserCommand
	if !DecodeJSON(w, r, &cmd) {
		return
	}

	result, err := h.Svc.ExecuteCommand(r.Context(), session.WorkspaceID, r.PathValue("id"), cmd)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// CloseSession handles DELETE /api/browser/sessions/{id}. Closing an unknown
// session succeeds with closed=false so retried closes stay safe but remain
// distinguishable from the close that tore the session down.
func (h *BrowserHandlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeMissingSession(w)
		return
	}

	closed, err := h.Svc.CloseSession(r.Context(), session.WorkspaceID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"closed": closed})
}
