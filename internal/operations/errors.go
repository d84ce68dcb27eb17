package operations

import (
	"errors"
	"fmt"

	apperrors "safetyreport/internal/errors"
)

// ErrorType represents the type of step error
type ErrorType string

const (
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeInvalidState ErrorType = "invalid_state"
)

// StepError is returned by Manager.Run when a step fails
type StepError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown step error"
	}
	msg := fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewExecutionError wraps the error a step returned
func NewExecutionError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a run cancelled before step started
func NewCancellationError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run cancelled",
		Cause:   cause,
	}
}

// NewInvalidStateError reports a step that ran without its inputs
func NewInvalidStateError(step, message string) *StepError {
	return &StepError{
		Type:    ErrorTypeInvalidState,
		Step:    step,
		Message: message,
	}
}

// FailedStep returns the step an error came from, if any
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

// Category classifies err for the console summary, using the application
// error type when one is wrapped
func Category(err error) string {
	if err == nil {
		return ""
	}
	if t := apperrors.TypeOf(err); t != "" {
		return string(t)
	}
	var se *StepError
	if errors.As(err, &se) {
		return string(se.Type)
	}
	return "UNKNOWN"
}
