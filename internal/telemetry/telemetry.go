// Package telemetry wires OpenTelemetry tracing and metrics for the
// process. Metrics recorded through the global otel meter are exported to
// a Prometheus registry that the HTTP server serves on /metrics; spans are
// optionally written to a file or stderr.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// Config selects what Init installs.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Tracing exports spans with the stdout exporter.
	Tracing bool
	// TraceFile receives spans when set; otherwise they go to stderr.
	TraceFile string
}

// FromConfig maps the telemetry settings onto a Config.
func FromConfig(cfg config.TelemetryConfig, version string) Config {
	return Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Tracing:        cfg.Tracing,
		TraceFile:      cfg.TraceFile,
	}
}

// Telemetry owns the installed providers and the metrics registry.
type Telemetry struct {
	// Registry gathers every exported metric.
	Registry *prometheus.Registry

	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
	out    io.Closer
}

// Init installs the global meter provider, and the tracer provider when
// tracing is enabled.
func Init(ctx context.Context, cfg Config) (*Telemetry, error) {
	if ctx == nil {
		return nil, errors.NewValidationError("context is required")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "framegraph"
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	t := &Telemetry{
		Registry: reg,
		meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		),
	}
	otel.SetMeterProvider(t.meter)

	if cfg.Tracing {
		var w io.Writer = os.Stderr
		if cfg.TraceFile != "" {
			f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				_ = t.meter.Shutdown(ctx)
				return nil, fmt.Errorf("open trace file: %w", err)
			}
			w, t.out = f, f
		}
		spans, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		t.tracer = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spans),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(t.tracer)
	}
	return t, nil
}

// Handler serves the registry in the Prometheus text format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{Registry: t.Registry})
}

// Shutdown flushes pending spans and metrics and releases the trace file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter: %w", err))
		}
	}
	if t.out != nil {
		if err := t.out.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
		t.out = nil
	}
	return errors.Join(errs...)
}
