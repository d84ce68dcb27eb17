package dataprocessing

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"safetyreport/internal/config"
	"safetyreport/internal/infrastructure"
	"safetyreport/pkg/contracts/domain"
)

// ReportBuilder turns fetched records into the figures rendered in the workbook
type ReportBuilder struct {
	opts   BuilderOptions
	logger *slog.Logger
}

// BuilderOptions selects the columns and regions the report is built from
type BuilderOptions struct {
	Questions       []string
	SafetyQuestions []config.SafetyQuestion
	RegionColumn    string
	FixedRegions    []string
	// Workers bounds the number of pivot tables built concurrently
	Workers int
}

// DefaultBuilderOptions returns the options for the review schema
func DefaultBuilderOptions(cfg *config.Config) BuilderOptions {
	return BuilderOptions{
		Questions:       config.QuestionColumns,
		SafetyQuestions: config.SafetyQuestions,
		RegionColumn:    cfg.Database.RegionColumn,
		FixedRegions:    config.Regions,
		Workers:         cfg.Report.Workers,
	}
}

// NewReportBuilder creates a builder
func NewReportBuilder(opts BuilderOptions) *ReportBuilder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &ReportBuilder{
		opts:   opts,
		logger: infrastructure.WithComponent(nil, "dataprocessing"),
	}
}

// Normalize blank-fills every cell and categorizes the question columns,
// including the region-pivoted ones
func (b *ReportBuilder) Normalize(rs *domain.RecordSet) *NormalizedSet {
	questions := b.opts.Questions
	for _, sq := range b.opts.SafetyQuestions {
		if !slices.Contains(questions, sq.Column) {
			questions = append(append([]string(nil), questions...), sq.Column)
		}
	}
	return Normalize(rs, questions)
}

// Aggregate computes the distribution and the conformity tables.
// Tables are built concurrently but keep question order.
func (b *ReportBuilder) Aggregate(ctx context.Context, ns *NormalizedSet) (distribution []domain.QuestionDistribution, tables []domain.ConformityTable, combined domain.ConformityTable, err error) {
	distribution = BuildDistribution(ns, b.opts.Questions)

	tables = make([]domain.ConformityTable, len(b.opts.SafetyQuestions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, sq := range b.opts.SafetyQuestions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables[i] = BuildConformityTable(ns, b.opts.RegionColumn, sq.Column, sq.Heading, b.opts.FixedRegions)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, nil, domain.ConformityTable{}, err
	}

	combined = CombineTables("CombinedSafety", config.CombinedHeading, tables)

	b.logger.DebugContext(ctx, "Report aggregated",
		slog.Int("records", ns.Len()),
		slog.Int("questions", len(distribution)),
		slog.Int("tables", len(tables)),
		slog.Int("regions", len(combined.Rows)))

	return distribution, tables, combined, nil
}

// BuildReport runs Normalize and Aggregate over rs
func (b *ReportBuilder) BuildReport(ctx context.Context, rs *domain.RecordSet) (*domain.AssessmentReport, error) {
	ns := b.Normalize(rs)
	distribution, tables, combined, err := b.Aggregate(ctx, ns)
	if err != nil {
		return nil, err
	}
	return &domain.AssessmentReport{
		RunID:        infrastructure.GetTraceID(ctx),
		From:         rs.From,
		To:           rs.To,
		GeneratedAt:  time.Now(),
		RecordCount:  rs.Len(),
		Distribution: distribution,
		Tables:       tables,
		Combined:     combined,
		Raw:          rs,
	}, nil
}
