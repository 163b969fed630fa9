// Package notify defines the job failure notification payload and the sinks
// that consume it.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// JobFailurePayload captures the canonical data we emit for job failure notifications.
type JobFailurePayload struct {
	JobID          string
	WorkspaceID    string
	AutomationID   string
	AutomationName string
	Trigger        string
	Error          string
	ErrorClass     string
	Severity       string
	OccurredAt     time.Time
	Metadata       map[string]string
}

// Sink describes a destination capable of consuming job failure notifications.
type Sink interface {
	SendJobFailure(ctx context.Context, payload JobFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload JobFailurePayload) error

// SendJobFailure implements the Sink interface.
func (f SinkFunc) SendJobFailure(ctx context.Context, payload JobFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Registration pairs a sink with a name used in delivery logs.
type Registration struct {
	Name string
	Sink Sink
}

// Fanout delivers each payload to every registered sink. Delivery errors are
// logged per sink and never propagated: a broken webhook must not fail the
// request that reported the job failure.
type Fanout struct {
	sinks  []Registration
	logger *slog.Logger
}

// NewFanout builds a fanout dispatcher over the given sinks.
func NewFanout(logger *slog.Logger, sinks ...Registration) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	registered := make([]Registration, 0, len(sinks))
	for _, s := range sinks {
		if s.Sink == nil {
			continue
		}
		registered = append(registered, s)
	}
	return &Fanout{
		sinks:  registered,
		logger: logger.With("component", "failure_notifier"),
	}
}

// Enabled reports whether any sink is registered.
func (f *Fanout) Enabled() bool {
	return f != nil && len(f.sinks) > 0
}

// SendJobFailure implements the Sink interface by fanning out to all sinks.
func (f *Fanout) SendJobFailure(ctx context.Context, payload JobFailurePayload) error {
	if f == nil {
		return nil
	}
	for _, s := range f.sinks {
		if err := s.Sink.SendJobFailure(ctx, payload); err != nil {
			f.logger.WarnContext(ctx, "job failure notification failed",
				"sink", s.Name,
				"job_id", payload.JobID,
				"error", err,
			)
		}
	}
	return nil
}
