package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/relaycrm/outreach-api/internal/core"
)

// EventBus publishes workspace events on Redis pub/sub channels. One channel
// per workspace keeps subscribers from seeing other tenants' events.
type EventBus struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewEventBus creates a Redis-backed event bus.
func NewEventBus(client redis.UniversalClient, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		client: client,
		logger: logger.With("component", "event_bus"),
	}
}

func channelFor(workspaceID string) string {
	return "ws:" + workspaceID + ":events"
}

// Publish sends the event to the workspace channel. Failures are logged and
// swallowed: event delivery never fails the request that produced it.
func (b *EventBus) Publish(ctx context.Context, workspaceID string, event core.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.ErrorContext(ctx, "marshal event", "error", err, "type", event.Type)
		return
	}

	if err := b.client.Publish(ctx, channelFor(workspaceID), payload).Err(); err != nil {
		b.logger.WarnContext(ctx, "publish event",
			"error", err, "workspace_id", workspaceID, "type", event.Type)
	}
}

var _ core.EventBus = (*EventBus)(nil)
