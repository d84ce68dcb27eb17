package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"safetyreport/internal/config"
	"safetyreport/pkg/contracts"
)

const (
	// MeterName is the instrumentation scope for tracer and meter
	MeterName = "safetyreport"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "none", "stdout", "file"
	TraceFile      string
	SampleRatio    float64
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		TraceFile:      cfg.TraceFile,
		SampleRatio:    cfg.SampleRatio,
	}
}

// DefaultOTelConfig returns a configuration with tracing disabled
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    config.AppName,
		ServiceVersion: contracts.Version,
		Environment:    "development",
		TraceExporter:  "none",
		SampleRatio:    1.0,
	}
}

// OTelProviders holds the OpenTelemetry providers.
// Metrics are always collected into Registry; the batch run writes them out
// with WriteMetrics since there is no scrape endpoint.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prom.Registry
	Logger         *slog.Logger

	traceOut io.Closer
}

// InitializeOTel sets up tracing and metrics for one run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := createResource(cfg)

	providers := &OTelProviders{Logger: logger}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return providers, nil
}

// createResource describes this process to exporters
func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)
}

// initializeTracing installs a tracer provider, or a no-op tracer when disabled
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var out io.Writer
	switch cfg.TraceExporter {
	case "", "none":
		providers.Tracer = otel.Tracer(MeterName)
		return nil
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		providers.traceOut = f
		out = f
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Syncer: a batch run is short and every span should be on disk at exit
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics wires an OTel meter provider to a private Prometheus registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prom.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.Registry = registry

	providers.Logger.DebugContext(ctx, "Metrics initialized")
	return nil
}

// WriteMetrics writes the collected metrics in the Prometheus text format,
// suitable for the node exporter textfile collector
func (p *OTelProviders) WriteMetrics(path string) error {
	if p == nil || p.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	return prom.WriteToTextfile(path, p.Registry)
}

// Shutdown flushes and closes the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.traceOut != nil {
		if err := p.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// ReportMetrics are the instruments recorded by a report run
type ReportMetrics struct {
	RunsTotal      metric.Int64Counter
	RecordsFetched metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepFailures   metric.Int64Counter
}

// CreateReportMetrics registers the report instruments on meter
func CreateReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	runs, err := meter.Int64Counter(
		"safety_report_runs",
		metric.WithDescription("Report runs by final status"),
	)
	if err != nil {
		return nil, err
	}

	records, err := meter.Int64Counter(
		"safety_report_records_fetched",
		metric.WithDescription("Review records read from the database"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"safety_report_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"safety_report_step_failures",
		metric.WithDescription("Pipeline steps that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		RunsTotal:      runs,
		RecordsFetched: records,
		StepDuration:   duration,
		StepFailures:   failures,
	}, nil
}

// RecordStepMetrics records the outcome of one pipeline step
func RecordStepMetrics(ctx context.Context, m *ReportMetrics, stepID string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
		m.StepFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("step", stepID)))
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", status),
	))
}

// RecordRunMetrics records the outcome of a whole run
func RecordRunMetrics(ctx context.Context, m *ReportMetrics, records int, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.RecordsFetched.Add(ctx, int64(records))
}

// TraceIDFromContext extracts the OTel trace ID from context
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(toAttributes(attributes)...)
}

func toAttributes(attributes map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return attrs
}
