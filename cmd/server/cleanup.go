package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner is an HTTP-style server that drains within ctx.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// gracefulStopper is a gRPC-style server that drains within ctx.
type gracefulStopper interface {
	GracefulStop(ctx context.Context)
}

// newCleanup builds the shutdown hook: stop accepting traffic on both
// servers, then close the store they share.
func newCleanup(ctx context.Context, api shutdowner, health gracefulStopper, store io.Closer) func() {
	return func() {
		if api != nil {
			if err := api.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down HTTP server", slog.String("error", err.Error()))
			}
		}

		if health != nil {
			health.GracefulStop(ctx)
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close store", slog.String("error", err.Error()))
			}
		}
	}
}
