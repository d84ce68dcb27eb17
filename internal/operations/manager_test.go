package operations

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
	"safetyreport/internal/infrastructure"
	"safetyreport/internal/shared/testutil"
	"safetyreport/internal/validation"
)

// fakeStep records that it ran and returns err
type fakeStep struct {
	BaseStep
	err   error
	calls int
	run   func(ctx context.Context, state *RunState) error
}

func newFakeStep(id string, err error) *fakeStep {
	return &fakeStep{BaseStep: NewBaseStep(id, "Fake "+id), err: err}
}

func (f *fakeStep) Execute(ctx context.Context, state *RunState) error {
	f.calls++
	if f.run != nil {
		return f.run(ctx, state)
	}
	return f.err
}

func validRequest(t *testing.T) validation.ReportRequest {
	return validation.ReportRequest{
		Driver:     "sqlite",
		DSN:        "reviews.db",
		From:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
		OutputPath: filepath.Join(t.TempDir(), "report.xlsx"),
	}
}

func TestNewManager_RejectsDuplicateSteps(t *testing.T) {
	_, err := NewManager(nil, nil, newFakeStep("a", nil), newFakeStep("a", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step ID")
}

func TestNewManager_DefaultSteps(t *testing.T) {
	m, err := NewManager(config.Default(), nil)
	require.NoError(t, err)

	var ids []string
	for _, s := range m.Steps() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{StepIDFetch, StepIDNormalize, StepIDAggregate, StepIDRender, StepIDSave}, ids)
}

func TestManager_Run_AllStepsComplete(t *testing.T) {
	a, b := newFakeStep("a", nil), newFakeStep("b", nil)
	m, err := NewManager(nil, nil, a, b)
	require.NoError(t, err)

	summary, err := m.Run(context.Background(), validRequest(t))
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, summary.Status)
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Steps, 2)
	for _, s := range summary.Steps {
		assert.Equal(t, StepStatusCompleted, s.Status)
		assert.Empty(t, s.Error)
	}
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestManager_Run_FailureSkipsLaterSteps(t *testing.T) {
	cause := apperrors.NewDatabaseError("connect to database", errors.New("refused"))
	a, b, c := newFakeStep("a", nil), newFakeStep("b", cause), newFakeStep("c", nil)
	m, err := NewManager(nil, nil, a, b, c)
	require.NoError(t, err)

	summary, err := m.Run(context.Background(), validRequest(t))
	require.Error(t, err)

	assert.Equal(t, "b", FailedStep(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDatabase))
	assert.Equal(t, "DATABASE", Category(err))

	assert.Equal(t, RunStatusFailed, summary.Status)
	assert.Equal(t, StepStatusCompleted, summary.Steps[0].Status)
	assert.Equal(t, StepStatusFailed, summary.Steps[1].Status)
	assert.Contains(t, summary.Steps[1].Error, "refused")
	assert.Equal(t, StepStatusSkipped, summary.Steps[2].Status)
	assert.Equal(t, "previous step b failed", summary.Steps[2].Message)
	assert.Equal(t, 0, c.calls)
}

func TestManager_Run_InvalidRequest(t *testing.T) {
	a := newFakeStep("a", nil)
	m, err := NewManager(nil, nil, a)
	require.NoError(t, err)

	req := validRequest(t)
	req.To = req.From.AddDate(0, 0, -1)

	summary, err := m.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Equal(t, RunStatusFailed, summary.Status)
	assert.Equal(t, StepStatusSkipped, summary.Steps[0].Status)
	assert.Equal(t, 0, a.calls)
}

func TestManager_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newFakeStep("a", nil)
	a.run = func(context.Context, *RunState) error {
		cancel()
		return nil
	}
	b := newFakeStep("b", nil)

	m, err := NewManager(nil, nil, a, b)
	require.NoError(t, err)

	summary, err := m.Run(ctx, validRequest(t))
	require.Error(t, err)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrorTypeCancellation, se.Type)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepStatusSkipped, summary.Steps[1].Status)
	assert.Equal(t, 0, b.calls)
}

func TestManager_Run_UsesContextRunID(t *testing.T) {
	m, err := NewManager(nil, nil, newFakeStep("a", nil))
	require.NoError(t, err)

	ctx := infrastructure.WithTraceID(context.Background(), "run-123")
	summary, err := m.Run(ctx, validRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "run-123", summary.RunID)
}

func TestManager_Run_RecordsMetrics(t *testing.T) {
	cfg := infrastructure.DefaultOTelConfig()
	providers, err := infrastructure.InitializeOTel(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	m, err := NewManager(nil, providers, newFakeStep("a", nil), newFakeStep("b", errors.New("boom")))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), validRequest(t))
	require.Error(t, err)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["safety_report_runs_total"])
	assert.True(t, names["safety_report_step_failures_total"])
	assert.True(t, names["safety_report_step_duration_seconds"])
}

func TestManager_Run_Logs(t *testing.T) {
	logger, handler := testutil.NewTestLogger()
	providers := &infrastructure.OTelProviders{Logger: logger}

	m, err := NewManager(nil, providers, newFakeStep("a", nil), newFakeStep("b", errors.New("boom")))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), validRequest(t))
	require.Error(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "run_started")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "step_completed")
	testutil.AssertLogContains(t, handler, slog.LevelError, "step_failed")
	testutil.AssertLogContains(t, handler, slog.LevelError, "run_failed")
	assert.True(t, handler.ContainsAttr("step", "b"))
	assert.True(t, handler.ContainsAttr("component", "operations"))
	assert.True(t, handler.ContainsAttr("error", "boom"))
}

func TestManager_Run_RecordsSpanErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { tp.Shutdown(context.Background()) })

	logger, handler := testutil.NewTestLogger()
	providers := &infrastructure.OTelProviders{Logger: logger, Tracer: tp.Tracer(TracerName)}

	m, err := NewManager(nil, providers, newFakeStep("a", nil), newFakeStep("b", errors.New("boom")))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), validRequest(t))
	require.Error(t, err)

	spans := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range recorder.Ended() {
		spans[s.Name()] = s
	}
	require.Contains(t, spans, "report.step.b")
	require.Contains(t, spans, "report.run")

	failed := spans["report.step.b"]
	assert.Equal(t, codes.Error, failed.Status().Code)
	require.NotEmpty(t, failed.Events())
	assert.Equal(t, "exception", failed.Events()[0].Name)
	assert.Equal(t, codes.Ok, spans["report.step.a"].Status().Code)
	assert.Equal(t, codes.Error, spans["report.run"].Status().Code)

	traceID := spans["report.run"].SpanContext().TraceID().String()
	assert.True(t, handler.ContainsAttr("otel_trace_id", traceID))
}

func TestManager_Run_NoErrorLogsOnSuccess(t *testing.T) {
	logger, handler := testutil.NewTestLogger()
	m, err := NewManager(nil, &infrastructure.OTelProviders{Logger: logger}, newFakeStep("a", nil))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), validRequest(t))
	require.NoError(t, err)
	testutil.AssertNoErrors(t, handler)
}
