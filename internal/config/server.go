package config

import (
	"fmt"
	"time"

	"github.com/cyclesync/cyclesync/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	HTTP            HTTPConfig
	GRPC            GRPCConfig
	Storage         StorageConfig
	LLM             LLMConfig
	Scheduling      SchedulingConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"CYCLESYNC_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values are replaced by the server's own defaults.
type HTTPConfig struct {
	Host              string        `env:"CYCLESYNC_HTTP_HOST"`
	Port              string        `env:"CYCLESYNC_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"CYCLESYNC_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"CYCLESYNC_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"CYCLESYNC_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"CYCLESYNC_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"CYCLESYNC_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"CYCLESYNC_HTTP_MAX_BODY_BYTES"`
}

// SchedulingConfig bounds the upcoming-task listing and the model wait.
type SchedulingConfig struct {
	DefaultUpcomingLimit int           `env:"CYCLESYNC_DEFAULT_UPCOMING_LIMIT" default:"10"`
	MaxUpcomingLimit     int           `env:"CYCLESYNC_MAX_UPCOMING_LIMIT" default:"100"`
	ModelTimeout         time.Duration `env:"CYCLESYNC_MODEL_TIMEOUT" default:"30s"`
}

// Validate validates scheduling configuration.
func (c *SchedulingConfig) Validate() error {
	if c.MaxUpcomingLimit < c.DefaultUpcomingLimit {
		return fmt.Errorf("CYCLESYNC_MAX_UPCOMING_LIMIT (%d) must be >= CYCLESYNC_DEFAULT_UPCOMING_LIMIT (%d)",
			c.MaxUpcomingLimit, c.DefaultUpcomingLimit)
	}
	return nil
}

// ObservabilityConfig holds observability configuration.
// Exporter endpoints and headers come from the standard OTEL_* variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"CYCLESYNC_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"cyclesync"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
