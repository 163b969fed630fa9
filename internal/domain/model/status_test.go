package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJobStatus(t *testing.T) {
	cases := []struct {
		reported string
		want     JobStatus
	}{
		{"pending", JobStatusPending},
		{"queued", JobStatusPending},
		{"running", JobStatusRunning},
		{"in_progress", JobStatusRunning},
		{"started", JobStatusRunning},
		{"success", JobStatusSuccess},
		{"succeeded", JobStatusSuccess},
		{"completed", JobStatusSuccess},
		{"done", JobStatusSuccess},
		{"failed", JobStatusFailed},
		{"error", JobStatusFailed},
		{"FAILED", JobStatusFailed},
		{"  Running  ", JobStatusRunning},
	}
	for _, tc := range cases {
		t.Run(tc.reported, func(t *testing.T) {
			got, err := NormalizeJobStatus(tc.reported)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeJobStatusIdempotent(t *testing.T) {
	for _, s := range []JobStatus{JobStatusPending, JobStatusRunning, JobStatusSuccess, JobStatusFailed} {
		got, err := NormalizeJobStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestNormalizeJobStatusUnknown(t *testing.T) {
	for _, reported := range []string{"", "bogus", "partial", "42"} {
		_, err := NormalizeJobStatus(reported)
		assert.Error(t, err, "reported %q", reported)
	}
}

func TestNormalizeTaskStatus(t *testing.T) {
	cases := []struct {
		reported string
		want     TaskStatus
	}{
		{"queued", TaskStatusQueued},
		{"created", TaskStatusQueued},
		{"running", TaskStatusRunning},
		{"working", TaskStatusRunning},
		{"completed", TaskStatusCompleted},
		{"finished", TaskStatusCompleted},
		{"success", TaskStatusCompleted},
		{"failed", TaskStatusFailed},
		{"cancelled", TaskStatusFailed},
		{"canceled", TaskStatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.reported, func(t *testing.T) {
			got, err := NormalizeTaskStatus(tc.reported)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := NormalizeTaskStatus("unknown")
	assert.Error(t, err)
}

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusPending, JobStatusRunning, true},
		{JobStatusPending, JobStatusSuccess, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusRunning, JobStatusSuccess, true},
		{JobStatusRunning, JobStatusFailed, true},
		{JobStatusRunning, JobStatusPending, false},
		{JobStatusSuccess, JobStatusRunning, false},
		{JobStatusSuccess, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRunning, false},
		{JobStatusFailed, JobStatusSuccess, false},
		{JobStatusFailed, JobStatusFailed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTaskStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
		ok       bool
	}{
		{TaskStatusQueued, TaskStatusRunning, true},
		{TaskStatusQueued, TaskStatusCompleted, true},
		{TaskStatusQueued, TaskStatusFailed, true},
		{TaskStatusRunning, TaskStatusCompleted, true},
		{TaskStatusRunning, TaskStatusFailed, true},
		{TaskStatusRunning, TaskStatusQueued, false},
		{TaskStatusCompleted, TaskStatusRunning, false},
		{TaskStatusCompleted, TaskStatusFailed, false},
		{TaskStatusFailed, TaskStatusRunning, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
	assert.True(t, JobStatusSuccess.Terminal())
	assert.True(t, JobStatusFailed.Terminal())

	assert.False(t, TaskStatusQueued.Terminal())
	assert.False(t, TaskStatusRunning.Terminal())
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
}
