package config

import "time"

// GRPCConfig holds configuration for the gRPC health endpoint.
// An empty port disables it.
type GRPCConfig struct {
	Port string `env:"CYCLESYNC_GRPC_PORT" default:"9090"`

	KeepaliveTime         time.Duration `env:"CYCLESYNC_GRPC_KEEPALIVE_TIME" default:"5m"`
	KeepaliveTimeout      time.Duration `env:"CYCLESYNC_GRPC_KEEPALIVE_TIMEOUT" default:"20s"`
	MaxConnectionIdle     time.Duration `env:"CYCLESYNC_GRPC_MAX_CONNECTION_IDLE" default:"15m"`
	MaxConnectionAge      time.Duration `env:"CYCLESYNC_GRPC_MAX_CONNECTION_AGE" default:"30m"`
	MaxConnectionAgeGrace time.Duration `env:"CYCLESYNC_GRPC_MAX_CONNECTION_AGE_GRACE" default:"5s"`
}
