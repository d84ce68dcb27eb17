// Package dataprocessing turns fetched review records into report figures.
//
// The work happens in three stages:
//
// 1. Normalize: every cell is blank-filled and question answers are mapped to
// Yes, No, N/A, Blank or Other.
// 2. Distribution: per-question counts and shares over all records.
// 3. Conformity: per-region pivots of the safety questions and their sum.
//
// Usage:
//
//	builder := dataprocessing.NewReportBuilder(dataprocessing.DefaultBuilderOptions(cfg))
//	report, err := builder.BuildReport(ctx, records)
package dataprocessing
