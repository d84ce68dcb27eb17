package operations

import (
	"sync"
	"time"

	"safetyreport/internal/dataprocessing"
	"safetyreport/internal/exporter"
	"safetyreport/internal/validation"
	"safetyreport/pkg/contracts/domain"
)

// RunState carries one report run from step to step
type RunState struct {
	mu sync.RWMutex

	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Request   validation.ReportRequest

	// Produced by the steps, in order
	Records    *domain.RecordSet
	Normalized *dataprocessing.NormalizedSet
	Report     *domain.AssessmentReport
	Workbook   *exporter.Workbook
	OutputPath string

	order []string
	steps map[string]*StepState

	Error error
}

// NewRunState creates a pending run for req
func NewRunState(id string, req validation.ReportRequest) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Request:   req,
		steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.Status = RunStatusCompleted
	r.EndTime = &now
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.Status = RunStatusFailed
	r.EndTime = &now
	r.Error = err
}

// AddStep registers a pending step state, keeping registration order
func (r *RunState) AddStep(id, name string) *StepState {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := NewStepState(id, name)
	if _, ok := r.steps[id]; !ok {
		r.order = append(r.order, id)
	}
	r.steps[id] = s
	return s
}

// GetStep returns the state of a step, or nil
func (r *RunState) GetStep(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[id]
}

// Steps returns the step states in execution order
func (r *RunState) Steps() []*StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*StepState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.steps[id])
	}
	return out
}

// Duration returns the run duration so far
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// RecordCount returns the number of fetched records
func (r *RunState) RecordCount() int {
	if r.Records == nil {
		return 0
	}
	return r.Records.Len()
}

// Summary snapshots the run for reporting
func (r *RunState) Summary() *RunSummary {
	steps := r.Steps()
	summary := &RunSummary{
		RunID:       r.ID,
		From:        r.Request.From,
		To:          r.Request.To,
		RecordCount: r.RecordCount(),
		OutputPath:  r.OutputPath,
		Duration:    r.Duration(),
		Steps:       make([]StepSummary, 0, len(steps)),
	}

	r.mu.RLock()
	summary.Status = r.Status
	r.mu.RUnlock()

	for _, s := range steps {
		summary.Steps = append(summary.Steps, s.Summary())
	}
	return summary
}
