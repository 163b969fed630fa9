package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/relaycrm/outreach-api/config"
	"github.com/relaycrm/outreach-api/internal/adapters/browserd"
	"github.com/relaycrm/outreach-api/internal/adapters/cloudbrowser"
	redisadapter "github.com/relaycrm/outreach-api/internal/adapters/redis"
	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/data"
	"github.com/relaycrm/outreach-api/internal/domain/session"
	"github.com/relaycrm/outreach-api/internal/observability/notify"
	"github.com/relaycrm/outreach-api/internal/observability/notify/pagerduty"
	"github.com/relaycrm/outreach-api/internal/observability/notify/slack"
	"github.com/relaycrm/outreach-api/internal/observability/statsd"
	"github.com/relaycrm/outreach-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Dispatch      *service.DispatchService
	Browser       *service.BrowserService
	Cloud         *service.CloudService
	Auth          *service.AuthService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *notify.Fanout
}

// Sink returns the metrics sink, or nil when metrics are disabled. The
// explicit nil keeps callers from storing a non-nil interface around a nil
// client.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB             *sql.DB
	Redis          redis.UniversalClient
	JobRepo        *data.JobRepo
	AutomationRepo *data.AutomationRepo
	LeadRepo       *data.LeadRepo
	CloudRepo      *data.CloudRepo
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "outreach",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *notify.Fanout {
	if !cfg.Enabled {
		return notify.NewFanout(logger)
	}

	sinks := make([]notify.Registration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:          cfg.Slack.WebhookURL,
			Channel:             cfg.Slack.Channel,
			Username:            cfg.Slack.Username,
			Timeout:             cfg.Timeout,
			RetryLimit:          cfg.RetryLimit,
			AutomationURLPrefix: cfg.Slack.AutomationURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, notify.Registration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, notify.Registration{Name: "pagerduty", Sink: client})
		}
	}

	return notify.NewFanout(logger, sinks...)
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	cfg := data.RepoConfig{Logger: logger}
	return &serviceRepositories{
		DB:             db,
		Redis:          redisClient,
		JobRepo:        data.NewJobRepo(db, cfg),
		AutomationRepo: data.NewAutomationRepo(db, cfg),
		LeadRepo:       data.NewLeadRepo(db, cfg),
		CloudRepo:      data.NewCloudRepo(db, cfg),
	}
}

func newJobService(repos *serviceRepositories, cfg config.JobsConfig, observability ObservabilityContainer, events core.EventBus, logger *slog.Logger) *service.JobService {
	return service.MustNewJobService(service.JobServiceOptions{
		Repo:         repos.JobRepo,
		DefaultBatch: cfg.DefaultBatch,
		MaxBatch:     cfg.MaxBatch,
		Logger:       logger,
		Metrics:      observability.Sink(),
		Notifier:     observability.FailureNotifier,
		Events:       events,
	})
}

func newDispatchService(repos *serviceRepositories, jobs *service.JobService, logger *slog.Logger) (*service.DispatchService, error) {
	return service.NewDispatchService(service.DispatchServiceOptions{
		Automations: repos.AutomationRepo,
		Leads:       repos.LeadRepo,
		Jobs:        jobs,
		Logger:      logger,
	})
}

func newBrowserService(cfg config.BrowserConfig, observability ObservabilityContainer, events core.EventBus, logger *slog.Logger) (*service.BrowserService, error) {
	backend, err := browserd.NewClient(browserd.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create browser backend client: %w", err)
	}

	return service.NewBrowserService(service.BrowserServiceOptions{
		Registry:       session.NewRegistry(nil),
		Backend:        backend,
		CommandTimeout: cfg.CommandTimeout,
		Logger:         logger,
		Metrics:        observability.Sink(),
		Events:         events,
	})
}

func newCloudService(repos *serviceRepositories, cfg config.ProviderConfig, observability ObservabilityContainer, events core.EventBus, logger *slog.Logger) (*service.CloudService, error) {
	if cfg.BaseURL == "" {
		// Cloud orchestration is optional; without a provider endpoint the
		// cloud routes are simply not registered.
		return nil, nil
	}

	provider, err := cloudbrowser.NewClient(cloudbrowser.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider client: %w", err)
	}

	return service.NewCloudService(service.CloudServiceOptions{
		Repo:            repos.CloudRepo,
		Provider:        provider,
		CostExpr:        cfg.CostExpr,
		PollConcurrency: cfg.PollConcurrency,
		Logger:          logger,
		Metrics:         observability.Sink(),
		Events:          events,
	})
}

func newAuthService(cfg config.AuthConfig, redisClient redis.UniversalClient, logger *slog.Logger) *service.AuthService {
	return BuildAuthService(AuthConfig{
		Auth:        cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
}

// NewServices wires repositories, adapters, and domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, appCfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient, logger)

	var events core.EventBus
	if repos.Redis != nil {
		events = redisadapter.NewEventBus(repos.Redis, logger)
	}

	jobService := newJobService(repos, appCfg.Jobs, observability, events, logger)

	dispatchService, err := newDispatchService(repos, jobService, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create dispatch service: %w", err)
	}

	browserService, err := newBrowserService(appCfg.Browser, observability, events, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create browser service: %w", err)
	}

	cloudService, err := newCloudService(repos, appCfg.Provider, observability, events, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create cloud service: %w", err)
	}
	if cloudService == nil {
		logger.Warn("cloud provider not configured; cloud browser routes disabled")
	}

	return ServiceContainer{
		Jobs:          jobService,
		Dispatch:      dispatchService,
		Browser:       browserService,
		Cloud:         cloudService,
		Auth:          newAuthService(appCfg.Auth, deps.RedisClient, logger),
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newSessionReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeSessionReaper,
		name: "session reaper",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			var reaperCfg config.ReaperConfig
			if deps.cfg.Config != nil {
				reaperCfg = deps.cfg.Config.Reaper
			}
			return RunReaper(ctx, ReaperConfig{
				Sessions: deps.cfg.Services.Browser,
				DB:       deps.cfg.DB,
				Logger:   deps.logger,
				Config:   reaperCfg,
				Metrics:  deps.cfg.Services.Observability.Sink(),
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newSessionReaperBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running
	if cfg.httpServer != nil {
		// Create a timeout context for HTTP shutdown
		shutdownCtx, cancel := context.WithTimeout(cfg.ctx, shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
