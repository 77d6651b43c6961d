package config

import (
	"fmt"
	"time"
)

// LLMConfig configures the generative model. Without an API key the
// scheduler runs on the rule-based fallback alone.
type LLMConfig struct {
	APIKey         string        `env:"CYCLESYNC_LLM_API_KEY"`
	BaseURL        string        `env:"CYCLESYNC_LLM_BASE_URL"`
	Model          string        `env:"CYCLESYNC_LLM_MODEL"`
	Temperature    float32       `env:"CYCLESYNC_LLM_TEMPERATURE"`
	MaxTokens      int           `env:"CYCLESYNC_LLM_MAX_TOKENS"`
	Timeout        time.Duration `env:"CYCLESYNC_LLM_TIMEOUT"`
	MaxRetries     int           `env:"CYCLESYNC_LLM_MAX_RETRIES" default:"2"`
	InitialBackoff time.Duration `env:"CYCLESYNC_LLM_INITIAL_BACKOFF"`
}

// Enabled reports whether a model client should be built.
func (c *LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// Validate validates model configuration.
func (c *LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("CYCLESYNC_LLM_TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("CYCLESYNC_LLM_MAX_TOKENS must be >= 0, got %d", c.MaxTokens)
	}
	return nil
}
