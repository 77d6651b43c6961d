// Package grpc serves the standard gRPC health service so orchestrators can
// probe the process without going through the HTTP API.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "cyclesync.v1.Scheduler"

// DefaultProbeInterval is how often the store is pinged.
const DefaultProbeInterval = 15 * time.Second

const probeTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server settings. Zero keepalive values keep grpc-go defaults.
type Config struct {
	KeepaliveTime         time.Duration
	KeepaliveTimeout      time.Duration
	MaxConnectionIdle     time.Duration
	MaxConnectionAge      time.Duration
	MaxConnectionAgeGrace time.Duration
	ProbeInterval         time.Duration
}

// HealthServer is a gRPC server exposing grpc.health.v1.Health.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	pinger   Pinger
	interval time.Duration
}

// NewHealthServer builds the server. Status starts NOT_SERVING until the
// first probe succeeds; a nil pinger means always SERVING.
func NewHealthServer(pinger Pinger, cfg Config) *HealthServer {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}

	s := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:                  cfg.KeepaliveTime,
			Timeout:               cfg.KeepaliveTimeout,
			MaxConnectionIdle:     cfg.MaxConnectionIdle,
			MaxConnectionAge:      cfg.MaxConnectionAge,
			MaxConnectionAgeGrace: cfg.MaxConnectionAgeGrace,
		}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &HealthServer{
		server:   s,
		health:   hs,
		pinger:   pinger,
		interval: cfg.ProbeInterval,
	}
}

// Serve probes the store once, starts the probe loop, and blocks serving
// lis until Stop or GracefulStop. The loop ends with ctx.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	s.probe(ctx)
	go s.watch(ctx)

	slog.InfoContext(ctx, "gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.pinger.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "store health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// GracefulStop marks every service NOT_SERVING and drains in-flight RPCs,
// forcing a stop when ctx expires first.
func (s *HealthServer) GracefulStop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.InfoContext(ctx, "gRPC server shutdown complete")
	case <-ctx.Done():
		slog.WarnContext(ctx, "gRPC server shutdown timed out, forcing stop")
		s.server.Stop()
	}
}
