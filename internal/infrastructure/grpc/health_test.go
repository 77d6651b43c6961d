package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

// togglePinger fails while down is set.
type togglePinger struct{ down atomic.Bool }

func (p *togglePinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("store unreachable")
	}
	return nil
}

func startServer(t *testing.T, pinger Pinger, interval time.Duration) healthpb.HealthClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	lis := bufconn.Listen(1 << 20)
	srv := NewHealthServer(pinger, Config{ProbeInterval: interval})
	go func() { _ = srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		srv.GracefulStop(stopCtx)
	})
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthServer_ServingWithoutPinger(t *testing.T) {
	client := startServer(t, nil, time.Hour)

	assert.Eventually(t, func() bool {
		return check(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))
}

func TestHealthServer_FollowsStore(t *testing.T) {
	pinger := &togglePinger{}
	client := startServer(t, pinger, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		return check(t, client, ServiceName) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	pinger.down.Store(true)
	assert.Eventually(t, func() bool {
		return check(t, client, ServiceName) == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)

	pinger.down.Store(false)
	assert.Eventually(t, func() bool {
		return check(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)
}
