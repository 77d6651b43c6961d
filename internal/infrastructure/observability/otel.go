// Package observability sets up OpenTelemetry traces, metrics and logs.
//
// Exporters speak OTLP over gRPC and are configured through the standard
// environment variables (OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS,
// OTEL_RESOURCE_ATTRIBUTES). When disabled, providers without exporters are
// installed so instrumented code runs unchanged.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is used when no service name is configured.
const DefaultServiceName = "cyclesync"

const exportTimeout = 10 * time.Second

// Config holds observability configuration.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Providers bundles the installed providers so they can be flushed together.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
	Logger *log.LoggerProvider
}

// Shutdown flushes and stops every provider, returning all failures joined.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Logger != nil {
		errs = append(errs, p.Logger.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Init installs the global tracer and meter providers and builds the
// application logger. Partial setup is shut down on failure.
func Init(ctx context.Context, cfg Config) (*Providers, *slog.Logger, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	p := &Providers{}
	fail := func(err error) (*Providers, *slog.Logger, error) {
		_ = p.Shutdown(context.Background())
		return nil, nil, err
	}

	var (
		logger *slog.Logger
		err    error
	)
	if p.Logger, logger, err = InitLogger(ctx, cfg, os.Stdout); err != nil {
		return fail(err)
	}
	if p.Tracer, err = InitTracerProvider(ctx, cfg); err != nil {
		return fail(err)
	}
	if p.Meter, err = InitMeterProvider(ctx, cfg); err != nil {
		return fail(err)
	}
	return p, logger, nil
}

// newResource merges the SDK defaults with attributes from the environment.
// Partial resources and schema conflicts are tolerated.
func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	serviceResource, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}

	res, err := resource.Merge(resource.Default(), serviceResource)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}
	return res, nil
}

// InitTracerProvider installs the global tracer provider and the W3C
// trace-context and baggage propagators.
func InitTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	// Exporters get a background context so a cancelled startup context
	// does not poison later exports.
	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithTimeout(exportTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// InitMeterProvider installs the global meter provider.
func InitMeterProvider(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return mp, nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithTimeout(exportTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(15*time.Second),
		)),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// InitLogger returns a logger provider and the slog.Logger to install as
// default. Disabled, the logger writes JSON to w; enabled, records go
// through the otelslog bridge.
func InitLogger(ctx context.Context, cfg Config, w io.Writer) (*log.LoggerProvider, *slog.Logger, error) {
	if !cfg.Enabled {
		return log.NewLoggerProvider(), slog.New(slog.NewJSONHandler(w, nil)), nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, nil, err
	}

	exporter, err := otlploggrpc.New(context.Background(),
		otlploggrpc.WithTimeout(exportTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	lp := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter,
			log.WithExportTimeout(5*time.Second),
		)),
		log.WithResource(res),
	)

	logger := otelslog.NewLogger(cfg.ServiceName, otelslog.WithLoggerProvider(lp))
	return lp, logger, nil
}
