package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"safetyreport/internal/config"
	"safetyreport/internal/infrastructure"
	"safetyreport/internal/validation"
)

// Manager runs report steps in order
type Manager struct {
	steps  []Step
	tracer *RunTracer
	logger *slog.Logger
}

// NewManager creates a manager for steps. With no steps the default
// pipeline for cfg is used. Run logs go to the providers' logger when set.
func NewManager(cfg *config.Config, providers *infrastructure.OTelProviders, steps ...Step) (*Manager, error) {
	if len(steps) == 0 {
		if cfg == nil {
			cfg = config.Default()
		}
		steps = DefaultSteps(cfg)
	}

	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s == nil || s.ID() == "" {
			return nil, fmt.Errorf("step must have an ID")
		}
		if seen[s.ID()] {
			return nil, fmt.Errorf("duplicate step ID: %s", s.ID())
		}
		seen[s.ID()] = true
	}

	tracer, err := NewRunTracer(providers)
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if providers != nil {
		logger = providers.Logger
	}

	return &Manager{
		steps:  steps,
		tracer: tracer,
		logger: infrastructure.WithComponent(logger, "operations"),
	}, nil
}

// Steps returns the configured steps in execution order
func (m *Manager) Steps() []Step {
	return append([]Step(nil), m.steps...)
}

// Run validates req and executes every step. The summary is returned even
// when a step fails.
func (m *Manager) Run(ctx context.Context, req validation.ReportRequest) (*RunSummary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewRunState(infrastructure.GetTraceID(ctx), req)
	for _, s := range m.steps {
		state.AddStep(s.ID(), s.Name())
	}

	ctx, span := m.tracer.TraceRun(ctx, state)

	if err := req.Validate(); err != nil {
		infrastructure.WithError(m.logger, err).ErrorContext(ctx, "request_invalid",
			slog.String("run_id", state.ID))
		for _, s := range state.Steps() {
			s.Skip("request invalid")
		}
		state.Fail(err)
		m.tracer.RecordRunCompletion(ctx, span, state, err)
		return state.Summary(), err
	}

	state.Start()
	m.logger.InfoContext(ctx, "run_started",
		slog.String("run_id", state.ID),
		slog.String("from", req.From.Format(config.DateLayout)),
		slog.String("to", req.To.Format(config.DateLayout)),
		slog.String("driver", req.Driver),
		slog.Int("step_count", len(m.steps)))

	err := m.executeSequential(ctx, state)
	if err != nil {
		state.Fail(err)
		infrastructure.WithError(m.logger, err).ErrorContext(ctx, "run_failed",
			slog.String("run_id", state.ID),
			slog.String("step", FailedStep(err)),
			slog.String("otel_trace_id", infrastructure.TraceIDFromContext(ctx)),
			slog.Duration("duration", state.Duration()))
	} else {
		state.Complete()
		m.logger.InfoContext(ctx, "run_completed",
			slog.String("run_id", state.ID),
			slog.Int("records", state.RecordCount()),
			slog.String("output", state.OutputPath),
			slog.String("otel_trace_id", infrastructure.TraceIDFromContext(ctx)),
			slog.Duration("duration", state.Duration()))
	}

	m.tracer.RecordRunCompletion(ctx, span, state, err)
	return state.Summary(), err
}

// executeSequential runs steps one by one. The first failure marks every
// later step as skipped.
func (m *Manager) executeSequential(ctx context.Context, state *RunState) error {
	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "run_cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, i, "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(m.steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, i+1, fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep runs one step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewInvalidStateError(step.ID(), "step state not found")
	}

	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step)

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if err != nil {
		wrapped := NewExecutionError(step.ID(), err)
		stepState.Fail(wrapped)
		infrastructure.RecordError(stepCtx, err)
		infrastructure.WithError(m.logger, err).ErrorContext(stepCtx, "step_failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("category", Category(err)),
			slog.Duration("duration", duration))
		m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)
		return wrapped
	}

	stepState.Complete()
	m.logger.InfoContext(stepCtx, "step_completed",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, nil)
	return nil
}

func (m *Manager) skipRemaining(state *RunState, from int, reason string) {
	for _, step := range m.steps[from:] {
		if s := state.GetStep(step.ID()); s != nil {
			s.Skip(reason)
		}
	}
}
