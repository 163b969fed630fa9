package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/relaycrm/outreach-api/internal/domain/auth"
	"github.com/relaycrm/outreach-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs         *service.JobService
	Dispatch     *service.DispatchService
	Browser      *service.BrowserService
	Cloud        *service.CloudService
	Auth         AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
//
// Every /api route requires an authenticated session; mutating control-plane
// operations (creating and triggering automations, provisioning and revoking
// cloud sessions) additionally require the admin role. The workspace scoping
// all reads and writes always comes from the session, never from the request.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		if services.Auth != nil {
			return RequireAuth(services.Auth)(h)
		}
		return h
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		if services.Auth != nil {
			return RequireRole(services.Auth, domainauth.RoleAdmin)(h)
		}
		return h
	}

	if services.Dispatch != nil {
		registerAutomationRoutes(mux, &AutomationHandlers{Svc: services.Dispatch}, authed, adminOnly)
	}
	if services.Jobs != nil {
		registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs}, authed)
	}
	if services.Browser != nil {
		registerBrowserRoutes(mux, &BrowserHandlers{Svc: services.Browser}, authed)
	}
	if services.Cloud != nil {
		registerCloudRoutes(mux, &CloudHandlers{Svc: services.Cloud}, authed, adminOnly)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: services.Logger}
		registerAuthRoutes(mux, authHandlers)
	}

	return mux
}

type routeWrapper func(http.HandlerFunc) http.Handler

func registerAutomationRoutes(mux *http.ServeMux, h *AutomationHandlers, authed, adminOnly routeWrapper) {
	mux.Handle("POST /api/automations", adminOnly(h.Create))
	mux.Handle("GET /api/automations", authed(h.List))
	mux.Handle("GET /api/automations/{id}", authed(h.GetByID))
	mux.Handle("DELETE /api/automations/{id}", adminOnly(h.Delete))
	mux.Handle("POST /api/automations/{id}/trigger", adminOnly(h.Trigger))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers, authed routeWrapper) {
	mux.Handle("GET /api/jobs/pending", authed(h.ListPending))
	mux.Handle("GET /api/jobs/stats", authed(h.Stats))
	mux.Handle("GET /api/jobs/{id}/status", authed(h.GetStatus))
	mux.Handle("POST /api/jobs/{id}/status", authed(h.ReportStatus))
}

func registerBrowserRoutes(mux *http.ServeMux, h *BrowserHandlers, authed routeWrapper) {
	mux.Handle("POST /api/browser/sessions", authed(h.CreateSession))
	mux.Handle("GET /api/browser/sessions", authed(h.ListSessions))
	mux.Handle("GET /api/browser/sessions/{id}", authed(h.GetSession))
	mux.Handle("POST /api/browser/sessions/{id}/execute", authed(h.ExecuteCommand))
	mux.Handle("DELETE /api/browser/sessions/{id}", authed(h.CloseSession))
}

func registerCloudRoutes(mux *http.ServeMux, h *CloudHandlers, authed, adminOnly routeWrapper) {
	mux.Handle("POST /api/cloud/sessions", adminOnly(h.CreateSession))
	mux.Handle("GET /api/cloud/sessions", authed(h.ListSessions))
	mux.Handle("GET /api/cloud/sessions/{id}", authed(h.GetSession))
	mux.Handle("POST /api/cloud/sessions/{id}/revoke", adminOnly(h.RevokeSession))
	mux.Handle("POST /api/cloud/sessions/{id}/tasks", authed(h.CreateTask))
	mux.Handle("GET /api/cloud/sessions/{id}/tasks", authed(h.ListTasks))
	mux.Handle("GET /api/cloud/tasks/{id}", authed(h.GetTask))
	mux.Handle("GET /api/cloud/tasks/{id}/result", authed(h.GetTaskResult))

	mux.Handle("POST /api/cloud/sessions/{id}/scrape-profile", authed(h.ScrapeProfile))
	mux.Handle("POST /api/cloud/sessions/{id}/search-leads", authed(h.SearchLeads))
	mux.Handle("POST /api/cloud/sessions/{id}/connection-request", authed(h.ConnectionRequest))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}
