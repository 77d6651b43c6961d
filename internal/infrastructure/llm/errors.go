package llm

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the provider answers with no choices.
var ErrEmptyCompletion = errors.New("model returned no choices")

// RetryableError wraps a failure worth another attempt.
// Only errors wrapped with Transient are retried.
//
// Use for: timeouts, connection resets, rate limits, 5xx responses.
// Don't use for: bad credentials, malformed requests, empty completions.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string { return e.Err.Error() }
func (e RetryableError) Unwrap() error { return e.Err }

// Transient marks err as retryable.
func Transient(err error) error {
	return RetryableError{Err: err}
}

// IsRetryable reports whether err was marked Transient.
func IsRetryable(err error) bool {
	var retryable RetryableError
	return errors.As(err, &retryable)
}

// classify wraps provider and transport failures that are worth retrying.
// parent is the caller's context; a per-attempt timeout is transient, a
// cancelled caller is not.
func classify(parent context.Context, err error) error {
	if err == nil || parent.Err() != nil {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && retryableStatus(apiErr.HTTPStatusCode) {
		return Transient(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && retryableStatus(reqErr.HTTPStatusCode) {
		return Transient(err)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &netErr):
		return Transient(err)
	}
	return err
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
