package config

import (
	"fmt"

	"github.com/cyclesync/cyclesync/internal/env"
)

// TestConfig holds connection settings for integration tests.
// Empty fields mean the matching tests are skipped.
type TestConfig struct {
	PostgresURL string `env:"TEST_POSTGRES_URL"`
	GCSBucket   string `env:"TEST_GCS_BUCKET"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
