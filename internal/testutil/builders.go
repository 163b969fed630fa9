// Package testutil provides testing utilities and helpers for the outreach job system.
package testutil

import (
	"encoding/json"

	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			AutomationID: "automation-1",
			WorkspaceID:  "workspace-1",
			TriggerType:  model.TriggerManual,
			Payload: model.JobPayload{
				Items: []model.WorkItem{
					{
						LeadID:     "lead-1",
						ProfileURL: "https://www.linkedin.com/in/johndoe",
						Name:       "John Doe",
					},
				},
				Actions: json.RawMessage(`[{"type":"visit_profile"}]`),
			},
		},
	}
}

// WithAutomation sets the automation ID.
func (b *JobRequestBuilder) WithAutomation(id string) *JobRequestBuilder {
	b.req.AutomationID = id
	return b
}

// WithWorkspace sets the workspace ID.
func (b *JobRequestBuilder) WithWorkspace(id string) *JobRequestBuilder {
	b.req.WorkspaceID = id
	return b
}

// WithTrigger sets the trigger type.
func (b *JobRequestBuilder) WithTrigger(trigger model.TriggerType) *JobRequestBuilder {
	b.req.TriggerType = trigger
	return b
}

// WithItems replaces the work items.
func (b *JobRequestBuilder) WithItems(items ...model.WorkItem) *JobRequestBuilder {
	b.req.Payload.Items = items
	return b
}

// WithActions sets the action list.
func (b *JobRequestBuilder) WithActions(actions string) *JobRequestBuilder {
	b.req.Payload.Actions = json.RawMessage(actions)
	return b
}

// Build returns the built CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// WorkItemFor returns a work item pointing at a canonical profile URL.
func WorkItemFor(leadID, profileURL string) model.WorkItem {
	return model.WorkItem{
		LeadID:     leadID,
		ProfileURL: profileURL,
	}
}
