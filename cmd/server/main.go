package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyclesync/cyclesync/internal/application/checklist"
	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/config"
	grpcserver "github.com/cyclesync/cyclesync/internal/infrastructure/grpc"
	httpserver "github.com/cyclesync/cyclesync/internal/infrastructure/http"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/handler"
	"github.com/cyclesync/cyclesync/internal/infrastructure/llm"
	"github.com/cyclesync/cyclesync/internal/infrastructure/observability"
)

func main() {
	if err := run(); err != nil {
		// slog may not be configured yet if config loading failed.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, logger, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown telemetry providers", "error", err)
		}
	}()
	slog.SetDefault(logger)

	slog.InfoContext(ctx, "starting cyclesync", "storage", cfg.Storage.Type)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	generator, err := newGenerator(cfg.LLM)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create model client: %w", err)
	}

	schedulingSvc := scheduling.NewService(store, generator, scheduling.Config{
		DefaultUpcomingLimit: cfg.Scheduling.DefaultUpcomingLimit,
		MaxUpcomingLimit:     cfg.Scheduling.MaxUpcomingLimit,
		ModelTimeout:         cfg.Scheduling.ModelTimeout,
	})
	checklistSvc := checklist.NewService(checklist.NewMemoryStore())

	api := httpserver.NewAPIServer(
		handler.New(schedulingSvc, checklistSvc).Routes(),
		store,
		httpserver.ServerConfig{
			Host:              cfg.HTTP.Host,
			Port:              cfg.HTTP.Port,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
			MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		},
	)

	errResult := make(chan error, 2)

	var grpcStop gracefulStopper
	if cfg.GRPC.Port != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to listen for gRPC: %w", err)
		}
		health := grpcserver.NewHealthServer(store, grpcserver.Config{
			KeepaliveTime:         cfg.GRPC.KeepaliveTime,
			KeepaliveTimeout:      cfg.GRPC.KeepaliveTimeout,
			MaxConnectionIdle:     cfg.GRPC.MaxConnectionIdle,
			MaxConnectionAge:      cfg.GRPC.MaxConnectionAge,
			MaxConnectionAgeGrace: cfg.GRPC.MaxConnectionAgeGrace,
		})
		go func() {
			if err := health.Serve(ctx, lis); err != nil {
				errResult <- fmt.Errorf("failed to serve gRPC: %w", err)
			}
		}()
		grpcStop = health
	}

	go func() {
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	// The shutdown sequence stays here so its order is visible in one place.
	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case runErr = <-errResult:
		slog.ErrorContext(ctx, "server failed, shutting down", "error", runErr)
	}

	// The root context may already be cancelled; shutdown gets its own window.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	cleanup := newCleanup(shutdownCtx, api, grpcStop, store)
	cleanup()

	return runErr
}

// newGenerator returns a nil interface when no API key is configured, so
// scheduling runs on the fallback alone.
func newGenerator(cfg config.LLMConfig) (scheduling.Generator, error) {
	if !cfg.Enabled() {
		slog.Info("no model API key configured, suggestions use the rule-based fallback")
		return nil, nil
	}

	client, err := llm.New(llm.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("model client configured", "model", client.Model())
	return client, nil
}
