package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	mw "github.com/cyclesync/cyclesync/internal/infrastructure/http/middleware"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

// Server defaults. Writes get a long window because /v1/schedule waits on
// the model, retries included.
const (
	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 1 << 20

	readinessTimeout = 2 * time.Second
)

// ServerConfig configures the listener and request limits.
// Zero or negative values fall back to the defaults above.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

func positiveOr[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

func (cfg ServerConfig) withDefaults() ServerConfig {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	cfg.ReadTimeout = positiveOr(cfg.ReadTimeout, DefaultReadTimeout)
	cfg.WriteTimeout = positiveOr(cfg.WriteTimeout, DefaultWriteTimeout)
	cfg.IdleTimeout = positiveOr(cfg.IdleTimeout, DefaultIdleTimeout)
	cfg.ReadHeaderTimeout = positiveOr(cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	cfg.MaxHeaderBytes = positiveOr(cfg.MaxHeaderBytes, DefaultMaxHeaderBytes)
	cfg.MaxBodyBytes = positiveOr(cfg.MaxBodyBytes, DefaultMaxBodyBytes)
	return cfg
}

// Pinger reports whether the task store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIServer serves the probes at the root and the API under /v1.
type APIServer struct {
	server *http.Server
}

// NewAPIServer builds the server around apiHandler. A nil pinger makes
// /ready always succeed.
func NewAPIServer(apiHandler http.Handler, pinger Pinger, cfg ServerConfig) *APIServer {
	cfg = cfg.withDefaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	r.Get("/health", health)
	r.Get("/ready", ready(pinger))
	r.Mount("/v1", apiHandler)

	traced := otelhttp.NewHandler(r, "cyclesync.http",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}))

	return &APIServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           traced,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

func ready(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger == nil {
			response.OK(w, map[string]string{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "store not reachable", "error", err)
			response.Error(w, "UNAVAILABLE", "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		response.OK(w, map[string]string{"status": "ready"})
	}
}

// Start listens until Shutdown; it returns http.ErrServerClosed after a
// clean shutdown.
func (s *APIServer) Start() error {
	slog.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "HTTP server draining")
	return s.server.Shutdown(ctx)
}

// Handler exposes the root handler to tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
