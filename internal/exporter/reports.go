package exporter

import (
	"time"

	"csvaudit/internal/audit"
	"csvaudit/internal/files"
)

// NumericSummaryHeaders is the header row of WriteNumericSummaryCSV
var NumericSummaryHeaders = append([]string{"column"}, audit.StatNames...)

// ListingHeaders is the header row of WriteListingCSV
var ListingHeaders = []string{"file", "size_bytes", "size_mb", "modified"}

// WriteNumericSummaryCSV writes one row per summarised column
func (w *CSVWriter) WriteNumericSummaryCSV(path string, summary []audit.NumericStats, bom bool) error {
	return w.WriteCSV(path, WriteOptions{
		Headers:   NumericSummaryHeaders,
		Records:   NumericSummaryRecords(summary),
		BOMPrefix: bom,
	})
}

// WriteListingCSV writes one row per discovered CSV file
func (w *CSVWriter) WriteListingCSV(path string, listing []files.CSVFile, bom bool) error {
	return w.WriteCSV(path, WriteOptions{
		Headers:   ListingHeaders,
		Records:   ListingRecords(listing),
		BOMPrefix: bom,
	})
}

// NumericSummaryRecords flattens a numeric summary into CSV records
func NumericSummaryRecords(summary []audit.NumericStats) [][]string {
	records := make([][]string, 0, len(summary))
	for _, s := range summary {
		record := []string{s.Column, formatInt(int64(s.Count))}
		for _, v := range s.Values()[1:] {
			record = append(record, formatFloat(v))
		}
		records = append(records, record)
	}
	return records
}

// ListingRecords flattens a file listing into CSV records
func ListingRecords(listing []files.CSVFile) [][]string {
	records := make([][]string, 0, len(listing))
	for _, f := range listing {
		records = append(records, []string{
			f.Name,
			formatInt(f.SizeBytes),
			formatFloat(f.SizeMB),
			f.ModTime.UTC().Format(time.RFC3339),
		})
	}
	return records
}
