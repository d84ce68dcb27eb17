package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"safetyreport/internal/infrastructure"
)

const (
	TracerName = "safetyreport.operations"
)

// RunTracer wraps report runs and their steps in spans and records metrics
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ReportMetrics
}

// NewRunTracer creates a tracer from providers. Nil providers give a tracer
// backed by the global (no-op by default) provider and no metrics.
func NewRunTracer(providers *infrastructure.OTelProviders) (*RunTracer, error) {
	rt := &RunTracer{tracer: otel.Tracer(TracerName)}
	if providers == nil {
		return rt, nil
	}
	if providers.Tracer != nil {
		rt.tracer = providers.Tracer
	}
	if providers.Meter != nil {
		m, err := infrastructure.CreateReportMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create report metrics: %w", err)
		}
		rt.metrics = m
	}
	return rt, nil
}

// TraceRun starts the span covering a whole run
func (rt *RunTracer) TraceRun(ctx context.Context, state *RunState) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "report.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.from", state.Request.From.Format("2006-01-02")),
			attribute.String("run.to", state.Request.To.Format("2006-01-02")),
			attribute.String("db.system", state.Request.Driver),
		),
	)
}

// TraceStep starts the span for one step
func (rt *RunTracer) TraceStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("report.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion ends a step span and records its metrics. Errors are
// recorded on the span by the caller before logging.
func (rt *RunTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	defer span.End()

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"step.duration_seconds": duration.Seconds(),
		"step.success":          err == nil,
	})
	if err == nil {
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordStepMetrics(ctx, rt.metrics, stepID, duration, err == nil)
}

// RecordRunCompletion ends the run span and records its metrics
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, state *RunState, err error) {
	defer span.End()

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"run.records":          state.RecordCount(),
		"run.output":           state.OutputPath,
		"run.duration_seconds": state.Duration().Seconds(),
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordRunMetrics(ctx, rt.metrics, state.RecordCount(), err == nil)
}
