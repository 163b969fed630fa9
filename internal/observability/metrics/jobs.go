package metrics

import (
	"time"

	obserrors "github.com/relaycrm/outreach-api/internal/observability/errors"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// JobMetric captures details about a job status transition for metric emission.
type JobMetric struct {
	Trigger  string
	Status   string
	Result   string
	Duration time.Duration // queue-to-completion time, zero for non-terminal transitions
	Err      error
}

// EmitJobTransition emits standardised job transition metrics.
func EmitJobTransition(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"trigger": in.Trigger,
		"status":  in.Status,
		"result":  in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("jobs.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("jobs.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
