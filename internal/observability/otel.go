// Package observability wires OpenTelemetry tracing and metrics for the
// service. Exporters are selected by configuration; everything degrades
// to noop when disabled.
package observability

import (
	"context"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	apperrors "cvtailor/internal/errors"
)

// Config selects the telemetry exporters.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // stdout, otlp, none
	MetricExporter string // prometheus, otlp, stdout, none
	OTLPEndpoint   string
	MetricsAddr    string // prometheus scrape listener, e.g. ":9090"
}

// Manager owns the telemetry providers for the process lifetime.
type Manager struct {
	cfg            Config
	logger         *apperrors.Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *promclient.Registry
	metricsServer  *metricsServer

	Metrics *Metrics
}

func NewManager(cfg Config, logger *apperrors.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Start builds and registers the global tracer and meter providers.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		m.logger.Info("observability disabled")
		return nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.cfg.ServiceName),
		semconv.ServiceVersion(m.cfg.ServiceVersion),
	)

	if err := m.startTracing(ctx, res); err != nil {
		return err
	}
	if err := m.startMetrics(ctx, res); err != nil {
		return err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	m.logger.Info("observability started",
		"trace_exporter", m.cfg.TraceExporter,
		"metric_exporter", m.cfg.MetricExporter,
	)
	return nil
}

func (m *Manager) startTracing(ctx context.Context, res *resource.Resource) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch m.cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(m.cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unknown trace exporter: %s", m.cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}

	m.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(m.tracerProvider)
	return nil
}

func (m *Manager) startMetrics(ctx context.Context, res *resource.Resource) error {
	var reader sdkmetric.Reader

	switch m.cfg.MetricExporter {
	case "prometheus":
		m.registry = promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(m.registry))
		if err != nil {
			return fmt.Errorf("creating prometheus exporter: %w", err)
		}
		reader = exporter
	case "otlp":
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(m.cfg.OTLPEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("creating otlp metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter)
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("creating stdout metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unknown metric exporter: %s", m.cfg.MetricExporter)
	}

	m.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(m.meterProvider)

	metrics, err := newMetrics(m.meterProvider.Meter("cvtailor"))
	if err != nil {
		return fmt.Errorf("registering metrics instruments: %w", err)
	}
	m.Metrics = metrics

	if m.cfg.MetricExporter == "prometheus" && m.cfg.MetricsAddr != "" {
		m.metricsServer = newMetricsServer(m.cfg.MetricsAddr, m.registry, m.logger)
		m.metricsServer.start()
	}
	return nil
}

// Shutdown flushes and stops all providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	var firstErr error
	if m.metricsServer != nil {
		if err := m.metricsServer.stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.meterProvider != nil {
		if err := m.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.tracerProvider != nil {
		if err := m.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
