// Package reaper provides the adapter for running the session reaper loop.
package reaper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/relaycrm/outreach-api/config"
	"github.com/relaycrm/outreach-api/internal/data"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
	"github.com/relaycrm/outreach-api/internal/service"
)

// Runner wires the reaper service to its cleanup targets and runs the loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	// Sessions is the live browser session service whose idle sessions the
	// reaper evicts. Required; when the process runs only the reaper mode it
	// still gets a service backed by an empty registry.
	Sessions service.SessionEvictor
	DB       *sql.DB
	Config   config.ReaperConfig
	Logger   *slog.Logger

	// Optional dependency injection for testing/decoupling
	Jobs    service.StaleJobFailer
	Metrics statsd.Sink
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	reaper, err := wireReaperService(opts)
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{
		reaper: reaper,
		logger: opts.Logger,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Sessions == nil {
		return errors.New("browser session service is required")
	}
	if opts.Jobs == nil && opts.DB == nil {
		return errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// wireReaperService wires up all dependencies for the reaper service.
func wireReaperService(opts RunnerOptions) (*service.ReaperService, error) {
	jobs := opts.Jobs
	if jobs == nil {
		jobs = data.NewJobRepo(opts.DB, data.RepoConfig{})
	}

	return service.NewReaperService(service.ReaperServiceOptions{
		Sessions: opts.Sessions,
		Jobs:     jobs,
		Config:   opts.Config,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}
