package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSessionReaper runs the idle browser session reaper.
	ServiceModeSessionReaper ServiceMode = "session-reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeSessionReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSessionReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, session-reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// JobsConfig contains automation job queue configuration.
type JobsConfig struct {
	// DefaultBatch is the pending-poll batch size when the worker omits a limit.
	DefaultBatch int `env:"JOBS_DEFAULT_BATCH" envDefault:"5"`

	// MaxBatch caps what a single pending poll may request.
	MaxBatch int `env:"JOBS_MAX_BATCH" envDefault:"5"`
}

// Sanitize applies guardrails to job queue configuration values.
func (j *JobsConfig) Sanitize() {
	if j.DefaultBatch < 1 {
		j.DefaultBatch = 1
	}
	if j.MaxBatch < j.DefaultBatch {
		j.MaxBatch = j.DefaultBatch
	}
}

// BrowserConfig contains remote browser session configuration.
type BrowserConfig struct {
	// BackendURL is the base URL of the browser backend daemon.
	BackendURL string `env:"BROWSER_BACKEND_URL" envDefault:"http://localhost:9222"`

	// CommandTimeout bounds the execution of a single browser command.
	CommandTimeout time.Duration `env:"BROWSER_COMMAND_TIMEOUT" envDefault:"60s"`
}

// Sanitize applies guardrails to browser configuration values.
func (b *BrowserConfig) Sanitize() {
	b.BackendURL = strings.TrimRight(strings.TrimSpace(b.BackendURL), "/")
	if b.CommandTimeout < time.Second {
		b.CommandTimeout = time.Second
	}
}

// ProviderConfig contains cloud browser provider configuration.
type ProviderConfig struct {
	// BaseURL is the provider API base URL.
	BaseURL string `env:"PROVIDER_BASE_URL"`

	// APIKey authenticates requests against the provider.
	APIKey string `env:"PROVIDER_API_KEY"`

	// Timeout bounds each provider HTTP request.
	Timeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`

	// CostExpr is the JMESPath expression used to pull the reported cost out
	// of provider result documents.
	CostExpr string `env:"PROVIDER_COST_EXPR" envDefault:"usage.cost"`

	// PollConcurrency is the number of concurrent provider polls per batch.
	PollConcurrency int `env:"PROVIDER_POLL_CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to provider configuration values.
func (p *ProviderConfig) Sanitize() {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.Timeout < time.Second {
		p.Timeout = time.Second
	}
	if p.PollConcurrency < 1 {
		p.PollConcurrency = 1
	}
}

// ReaperConfig contains idle session reaper configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`

	// IdleTimeout is how long a session may sit unused before eviction.
	IdleTimeout time.Duration `env:"REAPER_IDLE_TIMEOUT" envDefault:"15m"`

	// PendingMaxAge is the maximum age for pending jobs before they are
	// marked failed. Jobs no worker ever picked up fail after this long.
	PendingMaxAge time.Duration `env:"REAPER_PENDING_MAX_AGE" envDefault:"24h"`

	// BatchSize is the maximum number of job rows to fail per pass.
	// Batching prevents long locks on large tables.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < 10*time.Second {
		r.Interval = 10 * time.Second
	}
	if r.IdleTimeout < time.Minute {
		r.IdleTimeout = time.Minute
	}
	if r.PendingMaxAge < 5*time.Minute {
		r.PendingMaxAge = 5 * time.Minute
	}
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
