// Package llm is the OpenAI-compatible chat client that backs
// scheduling.Generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
)

const instrumentationName = "github.com/cyclesync/cyclesync/internal/infrastructure/llm"

// Defaults target Gemini's OpenAI-compatible endpoint.
const (
	DefaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel          = "gemini-2.5-flash"
	DefaultTemperature    = 0.4
	DefaultMaxTokens      = 2048
	DefaultTimeout        = 20 * time.Second
	DefaultMaxRetries     = 2
	DefaultInitialBackoff = 500 * time.Millisecond
)

// Config holds model client settings. Zero values take the defaults above.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a transient failure.
	// Negative disables retries.
	MaxRetries     int
	InitialBackoff time.Duration
}

// Client sends scheduling prompts to a chat-completions endpoint.
type Client struct {
	api    *openai.Client
	config Config
	tracer trace.Tracer
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ scheduling.Generator = (*Client)(nil)

// New creates a client. APIKey is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: cfg,
		tracer: otel.Tracer(instrumentationName),
		sleep:  sleepContext,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Generate sends prompt with the scheduler instructions and returns the raw
// completion text. Transient failures are retried with exponential backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm.Generate", trace.WithAttributes(
		attribute.String("llm.model", c.config.Model),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	backoff := c.config.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.WarnContext(ctx, "retrying model request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()))
			if err := c.sleep(ctx, backoff); err != nil {
				break
			}
			backoff *= 2
		}

		text, err := c.complete(ctx, prompt)
		if err == nil {
			span.SetAttributes(attribute.Int("llm.attempts", attempt+1))
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return "", fmt.Errorf("model request failed: %w", lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SchedulerInstructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	slog.DebugContext(ctx, "model request completed",
		slog.String("model", c.config.Model),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		slog.Int("tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
