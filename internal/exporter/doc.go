// Package exporter renders an assessment report into an xlsx workbook.
//
// The workbook has three sheets: "Safety Analysis" with the per-question
// distribution, "Safety" with one regional conformity table per safety
// question followed by the combined table, and "Raw Data" with every fetched
// record. Raw Data is written through excelize's stream writer.
//
// Example usage:
//
//	wb, err := exporter.Render(report, exporter.Options{BlockSpacing: 10})
//	if err != nil {
//	    return err
//	}
//	defer wb.Close()
//	err = wb.SaveAs("reports/Safety Assessment 2023-01-01 to 2023-03-31.xlsx")
package exporter
