// Package operations runs a quarterly safety report as a sequence of steps.
//
// The default pipeline is:
//
//   - fetch: read review records for the date range
//   - normalize: blank-fill cells and categorize answers
//   - aggregate: build the distribution and conformity tables
//   - render: lay out the workbook
//   - save: write the workbook to disk
//
// Each step is tracked by a StepState and wrapped in a trace span. A failed
// step stops the run and every later step is marked skipped.
//
// Example usage:
//
//	manager, err := operations.NewManager(cfg, providers)
//	if err != nil {
//		return err
//	}
//	summary, err := manager.Run(ctx, validation.ReportRequest{
//		Driver:     "sqlite",
//		DSN:        "reviews.db",
//		From:       from,
//		To:         to,
//		OutputPath: "reports/Q1.xlsx",
//	})
package operations
