package worker

import (
	"fmt"
	"log/slog"
	"time"

	"pw-announcer/pkg/config"
)

// WorkerConfig holds the operational parameters of the poll worker process.
// The announcement-facing settings (token, interval, batch selection) live in
// the user-editable runtime config file; this struct only covers the
// process-level knobs that operators set via environment variables.
type WorkerConfig struct {
	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int

	// MetricsPort is the port for the Prometheus metrics HTTP server.
	// Range: 1024-65535. Default: 9090.
	MetricsPort int

	// CycleTimeout bounds a single poll cycle, including all batch fetches
	// and deliveries. Must be positive. Default: 10 minutes.
	CycleTimeout time.Duration
}

// DefaultConfig returns a WorkerConfig with production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		HealthPort:   9091,
		MetricsPort:  9090,
		CycleTimeout: 10 * time.Minute,
	}
}

// Validate checks the configuration values.
func (c *WorkerConfig) Validate() error {
	if c.HealthPort < 1024 || c.HealthPort > 65535 {
		return fmt.Errorf("health port must be in 1024-65535, got %d", c.HealthPort)
	}
	if c.MetricsPort < 1024 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be in 1024-65535, got %d", c.MetricsPort)
	}
	if c.HealthPort == c.MetricsPort {
		return fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort)
	}
	if err := config.ValidateDurationRange(c.CycleTimeout, time.Second, time.Hour); err != nil {
		return fmt.Errorf("cycle timeout: %w", err)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with fallback to defaults on invalid values (fail-open: the
// worker always starts, bad values are logged and replaced).
//
// Environment variables:
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//   - METRICS_PORT: Integer 1024-65535 (default: 9090)
//   - CYCLE_TIMEOUT: Duration string, e.g. "10m" (default: 10 minutes)
func LoadConfigFromEnv(logger *slog.Logger) *WorkerConfig {
	defaults := DefaultConfig()

	cfg := WorkerConfig{
		HealthPort:   config.GetEnvInt("WORKER_HEALTH_PORT", defaults.HealthPort),
		MetricsPort:  config.GetEnvInt("METRICS_PORT", defaults.MetricsPort),
		CycleTimeout: config.GetEnvDuration("CYCLE_TIMEOUT", defaults.CycleTimeout),
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("Invalid worker configuration, falling back to defaults",
			slog.Any("error", err))
		return &defaults
	}

	return &cfg
}
