package operations

import (
	"time"
)

// Step identifiers, in execution order
const (
	StepIDFetch     = "fetch"
	StepIDNormalize = "normalize"
	StepIDAggregate = "aggregate"
	StepIDRender    = "render"
	StepIDSave      = "save"
)

// Step names
const (
	StepNameFetch     = "Fetch Records"
	StepNameNormalize = "Normalize Answers"
	StepNameAggregate = "Aggregate Results"
	StepNameRender    = "Render Workbook"
	StepNameSave      = "Save Workbook"
)

// RunStatus is the overall state of a report run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepSummary reports how one step ended
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RunSummary is returned by Manager.Run
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Status      RunStatus     `json:"status"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	RecordCount int           `json:"record_count"`
	OutputPath  string        `json:"output_path,omitempty"`
	Duration    time.Duration `json:"duration"`
	Steps       []StepSummary `json:"steps"`
}
