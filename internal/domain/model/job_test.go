package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateJobRequest() CreateJobRequest {
	return CreateJobRequest{
		AutomationID: "auto-1",
		WorkspaceID:  "ws-1",
		TriggerType:  TriggerManual,
		Payload: JobPayload{
			Items: []WorkItem{
				{LeadID: "lead-1", ProfileURL: "https://www.linkedin.com/in/johndoe", Name: "John Doe"},
			},
			Actions: json.RawMessage(`[{"type":"visit_profile"}]`),
		},
	}
}

func TestCreateJobRequestValidate(t *testing.T) {
	req := validCreateJobRequest()
	require.NoError(t, req.Validate())

	t.Run("missing automation", func(t *testing.T) {
		r := validCreateJobRequest()
		r.AutomationID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("missing workspace", func(t *testing.T) {
		r := validCreateJobRequest()
		r.WorkspaceID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("bad trigger", func(t *testing.T) {
		r := validCreateJobRequest()
		r.TriggerType = "cron"
		assert.Error(t, r.Validate())
	})

	t.Run("no items", func(t *testing.T) {
		r := validCreateJobRequest()
		r.Payload.Items = nil
		assert.Error(t, r.Validate())
	})

	t.Run("item without profile url", func(t *testing.T) {
		r := validCreateJobRequest()
		r.Payload.Items = append(r.Payload.Items, WorkItem{LeadID: "lead-2"})
		assert.Error(t, r.Validate())
	})
}

func TestTriggerTypeUnmarshalText(t *testing.T) {
	var tt TriggerType
	require.NoError(t, tt.UnmarshalText([]byte("scheduled")))
	assert.Equal(t, TriggerScheduled, tt)

	assert.Error(t, tt.UnmarshalText([]byte("sometimes")))
}
