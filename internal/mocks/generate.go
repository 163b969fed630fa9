// Package mocks provides mock implementations for testing the outreach job system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/relaycrm/outreach-api/internal/core JobRepository

// Generate mock for AutomationRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=automation_repository_mock.go github.com/relaycrm/outreach-api/internal/core AutomationRepository

// Generate mock for LeadRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=lead_repository_mock.go github.com/relaycrm/outreach-api/internal/core LeadRepository

// Generate mock for CloudRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cloud_repository_mock.go github.com/relaycrm/outreach-api/internal/core CloudRepository

// Generate mock for AutomationProvider interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=automation_provider_mock.go github.com/relaycrm/outreach-api/internal/core AutomationProvider

// Generate mock for BrowserBackend interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=browser_backend_mock.go github.com/relaycrm/outreach-api/internal/core BrowserBackend

// Generate mock for EventBus interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=event_bus_mock.go github.com/relaycrm/outreach-api/internal/core EventBus
