package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/library-circulation/eventstore/oteladapters"
)

// DefaultServiceName is reported as service.name when Config leaves it empty.
const DefaultServiceName = "library-circulation"

const instrumentationName = "github.com/AntonStoeckl/library-circulation"

var (
	// ErrSetupFailed wraps every error raised while building the providers.
	ErrSetupFailed = errors.New("telemetry setup failed")

	// ErrInvalidEndpoint is returned for an OTLP endpoint which is not an http(s) URL or host:port.
	ErrInvalidEndpoint = errors.New("invalid otlp endpoint")
)

// Config selects what Setup wires. An empty OTLPEndpoint keeps spans in process.
type Config struct {
	ServiceName  string
	OTLPEndpoint string
	Logger       *slog.Logger
}

// Bundle owns the providers built by Setup. Metrics are collected through the
// OpenTelemetry meter and exposed in Prometheus text format by MetricsHandler.
type Bundle struct {
	registry       *prometheus.Registry
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	logger         *slog.Logger
}

type otlpTarget struct {
	endpoint string
	path     string
	insecure bool
}

type otelErrorHandler struct {
	logger *slog.Logger
}

func (h otelErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	h.logger.Warn("telemetry exporter error", "error", err.Error())
}

// Setup builds the meter and tracer providers and installs them as the
// OpenTelemetry globals together with the W3C propagators.
func Setup(ctx context.Context, cfg Config) (*Bundle, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, errors.Join(ErrSetupFailed, err)
	}

	registry := prometheus.NewRegistry()

	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, errors.Join(ErrSetupFailed, err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	tracerOptions := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}

	if strings.TrimSpace(cfg.OTLPEndpoint) != "" {
		spanExporter, exporterErr := newSpanExporter(ctx, cfg.OTLPEndpoint)
		if exporterErr != nil {
			_ = meterProvider.Shutdown(ctx)
			return nil, errors.Join(ErrSetupFailed, exporterErr)
		}

		tracerOptions = append(tracerOptions, sdktrace.WithBatcher(spanExporter))
		logger.Info("telemetry tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	tracerProvider := sdktrace.NewTracerProvider(tracerOptions...)

	otel.SetMeterProvider(meterProvider)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetErrorHandler(otelErrorHandler{logger: logger})

	return &Bundle{
		registry:       registry,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		logger:         logger,
	}, nil
}

// MetricsHandler serves the collected metrics in Prometheus text format.
func (b *Bundle) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{})
}

// MetricsCollector returns a collector recording into the bundle's meter provider.
func (b *Bundle) MetricsCollector() *oteladapters.MetricsCollector {
	return oteladapters.NewMetricsCollector(b.meterProvider.Meter(instrumentationName))
}

// TracingCollector returns a collector starting spans on the bundle's tracer provider.
func (b *Bundle) TracingCollector() *oteladapters.TracingCollector {
	return oteladapters.NewTracingCollector(b.tracerProvider.Tracer(instrumentationName))
}

// Shutdown flushes and stops both providers.
func (b *Bundle) Shutdown(ctx context.Context) error {
	var errs []error

	if err := b.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metric shutdown: %w", err))
	}

	if err := b.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("trace shutdown: %w", err))
	}

	if len(errs) > 0 {
		b.logger.Warn("telemetry shutdown failed", "error", errors.Join(errs...).Error())
		return errors.Join(errs...)
	}

	return nil
}

func newSpanExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	target, err := resolveOTLPTarget(endpoint)
	if err != nil {
		return nil, err
	}

	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(target.endpoint),
		otlptracehttp.WithTimeout(10 * time.Second),
	}

	if target.insecure {
		options = append(options, otlptracehttp.WithInsecure())
	}

	if target.path != "" && target.path != "/" {
		options = append(options, otlptracehttp.WithURLPath(target.path))
	}

	return otlptracehttp.New(ctx, options...)
}

// resolveOTLPTarget accepts http://, https:// or a bare host[:port] (plain http).
func resolveOTLPTarget(raw string) (otlpTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpTarget{}, ErrInvalidEndpoint
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpTarget{}, errors.Join(ErrInvalidEndpoint, err)
	}

	target := otlpTarget{
		endpoint: u.Host,
		path:     strings.TrimSuffix(u.Path, "/"),
	}

	switch strings.ToLower(u.Scheme) {
	case "http":
		target.insecure = true
	case "https":
		target.insecure = false
	default:
		return otlpTarget{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidEndpoint, u.Scheme)
	}

	if target.endpoint == "" {
		return otlpTarget{}, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}

	if u.Port() == "" {
		target.endpoint = net.JoinHostPort(u.Hostname(), "4318")
	}

	return target, nil
}
