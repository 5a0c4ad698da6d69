// Package exporter writes inspection results to files.
//
// CSVWriter is the low-level writer with optional UTF-8 BOM for
// spreadsheet compatibility. WriteNumericSummaryCSV and WriteListingCSV
// build on it. WriteWorkbook renders a directory audit as one XLSX
// workbook with a sheet per result kind.
//
// Example usage:
//
//	report, err := inspector.AuditDirectory(ctx, dir, inspect.DefaultRequest())
//	if err != nil {
//		return err
//	}
//	err = exporter.WriteWorkbook("reports/audit.xlsx", report)
package exporter
