package operations

import (
	"context"
	"sync"
	"time"
)

// Step represents a single step of a report run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step, reading and writing the shared run state
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Message   string
	Error     error
	Metadata  map[string]interface{}
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = StepStatusSkipped
	s.Message = reason
}

// SetMetadata records a step-specific fact, such as a row count
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Summary snapshots the state for reporting
func (s *StepState) Summary() StepSummary {
	d := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := StepSummary{
		ID:       s.ID,
		Name:     s.Name,
		Status:   s.Status,
		Duration: d,
		Message:  s.Message,
	}
	if s.Error != nil {
		summary.Error = s.Error.Error()
	}
	if len(s.Metadata) > 0 {
		summary.Metadata = make(map[string]interface{}, len(s.Metadata))
		for k, v := range s.Metadata {
			summary.Metadata[k] = v
		}
	}
	return summary
}

// BaseStep provides the identity part of Step implementations
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a new base Step
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the Step ID
func (b *BaseStep) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Step name
func (b *BaseStep) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}
