package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/relaycrm/outreach-api/config"
	"github.com/relaycrm/outreach-api/internal/adapters/reaper"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
	"github.com/relaycrm/outreach-api/internal/service"
)

// ReaperConfig contains configuration for the session reaper.
type ReaperConfig struct {
	Sessions service.SessionEvictor
	DB       *sql.DB
	Logger   *slog.Logger
	Config   config.ReaperConfig
	Metrics  statsd.Sink
}

// RunReaper starts the session reaper. It evicts idle browser sessions and
// fails pending jobs no worker ever picked up.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Sessions: cfg.Sessions,
		DB:       cfg.DB,
		Config:   cfg.Config,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}
