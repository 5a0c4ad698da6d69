package exporter

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"csvaudit/internal/audit"
	"csvaudit/internal/errors"
	"csvaudit/internal/files"
	"csvaudit/internal/inspect"
	"csvaudit/internal/table"
)

func sampleReport() *inspect.DirectoryReport {
	return &inspect.DirectoryReport{
		RunID: "run-1",
		Files: []files.CSVFile{
			{Name: "Monday.csv", SizeBytes: 10, SizeMB: 0, ModTime: time.Date(2017, 7, 3, 0, 0, 0, 0, time.UTC)},
		},
		Reports: []inspect.FileReport{
			{
				File:          "Monday.csv",
				Mode:          "peek",
				RowsInspected: 4,
				Columns:       []string{"Flow Duration", "Label"},
				Suspicious: table.SuspiciousColumns{
					Unnamed:    []string{},
					Duplicate:  []string{},
					Whitespace: []string{},
					BOM:        []string{"\ufeffFlow Duration"},
				},
				Audit: audit.AuditResult{
					Shape:         audit.Shape{Rows: 4, Columns: 2},
					NDuplicates:   1,
					DuplicateRate: 0.25,
					ObjectColumns: []string{"Label"},
					MissingTop:    []audit.MissingStat{{Column: "Flow Duration", Percent: 25}, {Column: "Label", Percent: 0}},
					LabelCounts:   []audit.LabelCount{{Value: "BENIGN", Count: 3}, {Value: "DDoS", Count: 1}},
				},
				Numeric: []audit.NumericStats{
					{Column: "Flow Duration", Count: 1, Mean: 10, Std: math.NaN(), Min: 10, P1: 10, P50: 10, P99: 10, Max: 10},
				},
			},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "audit.xlsx")

	require.NoError(t, WriteWorkbook(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetNames, f.GetSheetList())

	tests := []struct {
		sheet    string
		wantRows int
		header   []string
		check    func(t *testing.T, rows [][]string)
	}{
		{
			sheet:    SheetFiles,
			wantRows: 2,
			header:   ListingHeaders,
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, "Monday.csv", rows[1][0])
			},
		},
		{
			sheet:    SheetAudit,
			wantRows: 2,
			header:   sheetHeaders[SheetAudit],
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, []string{"Monday.csv", "peek", "4", "4", "2", "1"}, rows[1][:6])
				assert.Equal(t, "true", rows[1][9])
				assert.Equal(t, "\ufeffFlow Duration", rows[1][13])
			},
		},
		{
			sheet:    SheetMissing,
			wantRows: 3,
			header:   []string{"file", "column", "percent"},
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, []string{"Monday.csv", "Flow Duration", "25"}, rows[1])
			},
		},
		{
			sheet:    SheetLabels,
			wantRows: 3,
			header:   []string{"file", "value", "count"},
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, []string{"Monday.csv", "BENIGN", "3"}, rows[1])
				assert.Equal(t, []string{"Monday.csv", "DDoS", "1"}, rows[2])
			},
		},
		{
			sheet:    SheetNumeric,
			wantRows: 2,
			header:   sheetHeaders[SheetNumeric],
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, []string{"Monday.csv", "Flow Duration", "1", "10", ""}, rows[1][:5])
			},
		},
		{
			sheet:    SheetColumns,
			wantRows: 3,
			header:   []string{"file", "position", "column"},
			check: func(t *testing.T, rows [][]string) {
				assert.Equal(t, []string{"Monday.csv", "1", "Label"}, rows[2])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			require.NoError(t, err)
			require.Len(t, rows, tt.wantRows)
			assert.Equal(t, tt.header, rows[0])
			tt.check(t, rows)
		})
	}
}

func TestWriteWorkbook_EmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, WriteWorkbook(path, &inspect.DirectoryReport{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetAudit)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteWorkbook_UnwritablePathIsStorageError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, WriteWorkbook(blocker, &inspect.DirectoryReport{}))

	err := WriteWorkbook(filepath.Join(blocker, "out.xlsx"), sampleReport())

	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}
