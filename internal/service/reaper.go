package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relaycrm/outreach-api/config"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
)

// SessionEvictor is the slice of BrowserService the reaper needs.
type SessionEvictor interface {
	EvictIdle(ctx context.Context, idleFor time.Duration) int
}

// StaleJobFailer fails pending jobs older than maxAge, up to batchSize rows
// per call, and returns the number of rows changed.
type StaleJobFailer interface {
	FailStalePending(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Sessions SessionEvictor      // Required: browser session evictor
	Jobs     StaleJobFailer      // Optional: stale pending job cleanup
	Config   config.ReaperConfig // Required: reaper configuration
	Logger   *slog.Logger        // Optional: structured logger
	Metrics  statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// ReaperService periodically evicts idle browser sessions so forgotten
// sessions do not hold browsers open forever, and fails pending jobs no
// worker ever picked up. Busy sessions are left alone; their idle clock
// restarts when the running command finishes.
type ReaperService struct {
	sessions SessionEvictor
	jobs     StaleJobFailer
	config   config.ReaperConfig
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Sessions == nil {
		return nil, errors.New("SessionEvictor is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"idle_timeout", opts.Config.IdleTimeout,
		)
	}

	return &ReaperService{
		sessions: opts.Sessions,
		jobs:     opts.Jobs,
		config:   opts.Config,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// MustNewReaperService constructs a new ReaperService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewReaperService(opts ReaperServiceOptions) *ReaperService {
	svc, err := NewReaperService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ReaperService: %v", err))
	}
	return svc
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting session reaper",
			"interval", s.config.Interval,
			"idle_timeout", s.config.IdleTimeout,
		)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runSweep(ctx)
	return s.runLoop(ctx, ticker)
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	// Use modulo on uint64 before converting to avoid overflow
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		// Graceful shutdown during jitter
	}
}

// runLoop runs the eviction loop until context is cancelled.
func (s *ReaperService) runLoop(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			}
			// Return nil on graceful shutdown to avoid treating it as a failure
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep performs one cleanup pass: idle session eviction followed by
// stale pending job failure.
func (s *ReaperService) runSweep(ctx context.Context) {
	start := time.Now()
	evicted := s.sessions.EvictIdle(ctx, s.config.IdleTimeout)
	failed := s.failStalePendingJobs(ctx)
	elapsed := time.Since(start)

	if (evicted > 0 || failed > 0) && s.logger != nil {
		s.logger.InfoContext(ctx, "reaper sweep finished",
			"sessions_evicted", evicted,
			"jobs_failed", failed,
			"elapsed", elapsed,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("reaper.sessions_evicted", int64(evicted), nil)
		s.metrics.Count("reaper.stale_jobs_failed", failed, nil)
		s.metrics.Timing("reaper.sweep_duration", elapsed, nil)
	}
}

// failStalePendingJobs marks pending jobs older than the configured max age
// as failed. Loops until no more rows are affected to handle large backlogs
// in batches.
func (s *ReaperService) failStalePendingJobs(ctx context.Context) int64 {
	if s.jobs == nil {
		return 0
	}

	var total int64
	for {
		count, err := s.jobs.FailStalePending(ctx, s.config.PendingMaxAge, s.config.BatchSize)
		total += count
		if err != nil {
			if !errors.Is(err, context.Canceled) && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to fail stale pending jobs", "error", err)
			}
			return total
		}
		if count == 0 {
			return total
		}
		// Check context between batches
		if ctx.Err() != nil {
			return total
		}
	}
}
