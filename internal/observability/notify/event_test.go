package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_Enabled(t *testing.T) {
	assert.False(t, NewFanout(nil).Enabled())
	assert.False(t, NewFanout(nil, Registration{Name: "nil-sink"}).Enabled())

	sink := SinkFunc(func(context.Context, JobFailurePayload) error { return nil })
	assert.True(t, NewFanout(nil, Registration{Name: "ok", Sink: sink}).Enabled())
}

func TestFanout_DeliversToEverySink(t *testing.T) {
	var first, second []JobFailurePayload
	fanout := NewFanout(nil,
		Registration{Name: "first", Sink: SinkFunc(func(_ context.Context, p JobFailurePayload) error {
			first = append(first, p)
			return nil
		})},
		Registration{Name: "second", Sink: SinkFunc(func(_ context.Context, p JobFailurePayload) error {
			second = append(second, p)
			return nil
		})},
	)

	payload := JobFailurePayload{JobID: "job-1", WorkspaceID: "ws-1"}
	require.NoError(t, fanout.SendJobFailure(context.Background(), payload))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "job-1", first[0].JobID)
	assert.Equal(t, "ws-1", second[0].WorkspaceID)
}

func TestFanout_SinkErrorDoesNotStopDelivery(t *testing.T) {
	delivered := 0
	fanout := NewFanout(nil,
		Registration{Name: "broken", Sink: SinkFunc(func(context.Context, JobFailurePayload) error {
			return errors.New("webhook down")
		})},
		Registration{Name: "working", Sink: SinkFunc(func(context.Context, JobFailurePayload) error {
			delivered++
			return nil
		})},
	)

	// A broken sink is logged, never surfaced.
	require.NoError(t, fanout.SendJobFailure(context.Background(), JobFailurePayload{JobID: "job-1"}))
	assert.Equal(t, 1, delivered)
}
