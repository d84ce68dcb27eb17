package operations

import (
	"context"
	"log/slog"
	"time"

	"safetyreport/internal/config"
	"safetyreport/internal/dataprocessing"
	"safetyreport/internal/exporter"
	"safetyreport/internal/infrastructure"
	"safetyreport/internal/source"
	"safetyreport/internal/validation"
	"safetyreport/pkg/contracts/domain"
)

// DefaultSteps returns the report pipeline: fetch, normalize, aggregate,
// render and save
func DefaultSteps(cfg *config.Config) []Step {
	builder := dataprocessing.NewReportBuilder(dataprocessing.DefaultBuilderOptions(cfg))
	return []Step{
		NewFetchStep(cfg.Database),
		NewNormalizeStep(builder),
		NewAggregateStep(builder),
		NewRenderStep(exporter.Options{BlockSpacing: cfg.Report.BlockSpacing}),
		NewSaveStep(),
	}
}

// FetchStep reads the review records for the requested range
type FetchStep struct {
	BaseStep
	db        config.DatabaseConfig
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewFetchStep creates a fetch step. Driver and DSN come from the request.
func NewFetchStep(db config.DatabaseConfig) *FetchStep {
	logger := infrastructure.WithComponent(nil, "operations")
	return &FetchStep{
		BaseStep:  NewBaseStep(StepIDFetch, StepNameFetch),
		db:        db,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Execute implements Step
func (s *FetchStep) Execute(ctx context.Context, state *RunState) error {
	db := s.db
	db.Driver = state.Request.Driver
	db.DSN = state.Request.DSN

	if db.Driver == "sqlite" {
		if err := s.validator.ValidateDatabaseFile(db.DSN); err != nil {
			return err
		}
	}

	store, err := source.Open(ctx, db)
	if err != nil {
		return err
	}
	defer store.Close()

	rs, err := store.FetchRange(ctx, state.Request.From, state.Request.To)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		s.logger.WarnContext(ctx, "no_records_in_range",
			slog.String("run_id", state.ID),
			slog.String("from", state.Request.From.Format(config.DateLayout)),
			slog.String("to", state.Request.To.Format(config.DateLayout)))
	}

	state.Records = rs
	if st := state.GetStep(s.ID()); st != nil {
		st.SetMetadata("records", rs.Len())
	}
	infrastructure.AddSpanEvent(ctx, "records_fetched", map[string]interface{}{
		"records": rs.Len(),
		"columns": len(rs.Columns),
	})
	return nil
}

// NormalizeStep blank-fills and categorizes the fetched answers
type NormalizeStep struct {
	BaseStep
	builder *dataprocessing.ReportBuilder
}

// NewNormalizeStep creates a normalize step
func NewNormalizeStep(builder *dataprocessing.ReportBuilder) *NormalizeStep {
	return &NormalizeStep{
		BaseStep: NewBaseStep(StepIDNormalize, StepNameNormalize),
		builder:  builder,
	}
}

// Execute implements Step
func (s *NormalizeStep) Execute(ctx context.Context, state *RunState) error {
	if state.Records == nil {
		return NewInvalidStateError(s.ID(), "no records fetched")
	}
	state.Normalized = s.builder.Normalize(state.Records)
	return nil
}

// AggregateStep builds the distribution and conformity tables
type AggregateStep struct {
	BaseStep
	builder *dataprocessing.ReportBuilder
}

// NewAggregateStep creates an aggregate step
func NewAggregateStep(builder *dataprocessing.ReportBuilder) *AggregateStep {
	return &AggregateStep{
		BaseStep: NewBaseStep(StepIDAggregate, StepNameAggregate),
		builder:  builder,
	}
}

// Execute implements Step
func (s *AggregateStep) Execute(ctx context.Context, state *RunState) error {
	if state.Normalized == nil {
		return NewInvalidStateError(s.ID(), "records not normalized")
	}

	distribution, tables, combined, err := s.builder.Aggregate(ctx, state.Normalized)
	if err != nil {
		return err
	}

	report := newReport(state)
	report.Distribution = distribution
	report.Tables = tables
	report.Combined = combined
	state.Report = report

	if st := state.GetStep(s.ID()); st != nil {
		st.SetMetadata("tables", len(tables))
		st.SetMetadata("regions", len(combined.Rows))
	}
	return nil
}

// RenderStep lays the report out as a workbook
type RenderStep struct {
	BaseStep
	opts exporter.Options
}

// NewRenderStep creates a render step
func NewRenderStep(opts exporter.Options) *RenderStep {
	return &RenderStep{
		BaseStep: NewBaseStep(StepIDRender, StepNameRender),
		opts:     opts,
	}
}

// Execute implements Step
func (s *RenderStep) Execute(ctx context.Context, state *RunState) error {
	if state.Report == nil {
		return NewInvalidStateError(s.ID(), "report not aggregated")
	}
	wb, err := exporter.Render(state.Report, s.opts)
	if err != nil {
		return err
	}
	state.Workbook = wb
	return nil
}

// SaveStep writes the workbook to the requested path
type SaveStep struct {
	BaseStep
	validator *validation.FileValidator
}

// NewSaveStep creates a save step
func NewSaveStep() *SaveStep {
	return &SaveStep{
		BaseStep:  NewBaseStep(StepIDSave, StepNameSave),
		validator: validation.NewFileValidator(infrastructure.WithComponent(nil, "operations")),
	}
}

// Execute implements Step
func (s *SaveStep) Execute(ctx context.Context, state *RunState) error {
	if state.Workbook == nil {
		return NewInvalidStateError(s.ID(), "workbook not rendered")
	}
	defer state.Workbook.Close()

	path := state.Request.OutputPath
	if err := s.validator.ValidateOutputFile(path); err != nil {
		return err
	}
	if err := state.Workbook.SaveAs(path); err != nil {
		return err
	}
	state.OutputPath = path
	return nil
}

func newReport(state *RunState) *domain.AssessmentReport {
	return &domain.AssessmentReport{
		RunID:       state.ID,
		From:        state.Request.From,
		To:          state.Request.To,
		GeneratedAt: time.Now(),
		RecordCount: state.RecordCount(),
		Raw:         state.Records,
	}
}
