package model

import (
	"fmt"
	"strings"
)

// Status reconciliation: workers (the browser extension) and the cloud
// automation provider each report status in their own vocabulary. Everything
// stored internally is first mapped onto the canonical enums below. The
// mapping is whitelist-based; strings outside the whitelist are rejected so a
// misbehaving caller cannot corrupt the state machine.

// jobStatusVocabulary maps reported job-status strings (lower-cased) to
// canonical values.
var jobStatusVocabulary = map[string]JobStatus{
	"pending":     JobStatusPending,
	"queued":      JobStatusPending,
	"running":     JobStatusRunning,
	"in_progress": JobStatusRunning,
	"started":     JobStatusRunning,
	"success":     JobStatusSuccess,
	"succeeded":   JobStatusSuccess,
	"completed":   JobStatusSuccess,
	"complete":    JobStatusSuccess,
	"done":        JobStatusSuccess,
	"failed":      JobStatusFailed,
	"failure":     JobStatusFailed,
	"error":       JobStatusFailed,
}

// taskStatusVocabulary maps provider-reported task-status strings
// (lower-cased) to canonical values.
var taskStatusVocabulary = map[string]TaskStatus{
	"queued":      TaskStatusQueued,
	"pending":     TaskStatusQueued,
	"created":     TaskStatusQueued,
	"running":     TaskStatusRunning,
	"in_progress": TaskStatusRunning,
	"working":     TaskStatusRunning,
	"completed":   TaskStatusCompleted,
	"complete":    TaskStatusCompleted,
	"success":     TaskStatusCompleted,
	"finished":    TaskStatusCompleted,
	"failed":      TaskStatusFailed,
	"failure":     TaskStatusFailed,
	"error":       TaskStatusFailed,
	"cancelled":   TaskStatusFailed,
	"canceled":    TaskStatusFailed,
}

// NormalizeJobStatus maps a worker-reported status string onto the canonical
// JobStatus. The mapping is case-insensitive and idempotent: canonical values
// normalize to themselves. Unknown strings return an error and must never be
// stored.
func NormalizeJobStatus(reported string) (JobStatus, error) {
	key := strings.ToLower(strings.TrimSpace(reported))
	if status, ok := jobStatusVocabulary[key]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unrecognized job status: %q", reported)
}

// NormalizeTaskStatus maps a provider-reported status string onto the
// canonical TaskStatus with the same whitelist semantics as
// NormalizeJobStatus.
func NormalizeTaskStatus(reported string) (TaskStatus, error) {
	key := strings.ToLower(strings.TrimSpace(reported))
	if status, ok := taskStatusVocabulary[key]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unrecognized task status: %q", reported)
}

// Terminal returns true once a job has reached a state it may never leave.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// Terminal returns true once a task has reached a state it may never leave.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether a job status change is allowed. Transitions
// are monotonic: terminal states are immutable, and a running job cannot move
// back to pending.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if s == JobStatusRunning && next == JobStatusPending {
		return false
	}
	return true
}

// CanTransitionTo reports whether a task status change is allowed. Task
// progress is strictly forward-only: queued -> running -> {completed|failed}.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case TaskStatusQueued:
		return true
	case TaskStatusRunning:
		return next.Terminal()
	default:
		return false
	}
}
