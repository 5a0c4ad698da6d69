package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"csvaudit/internal/audit"
	"csvaudit/internal/errors"
	"csvaudit/internal/inspect"
)

// Workbook sheet names, in tab order
const (
	SheetFiles   = "Files"
	SheetAudit   = "Audit"
	SheetMissing = "Missing"
	SheetLabels  = "Labels"
	SheetNumeric = "Numeric"
	SheetColumns = "Columns"
)

// SheetNames lists the workbook tabs in order
var SheetNames = []string{SheetFiles, SheetAudit, SheetMissing, SheetLabels, SheetNumeric, SheetColumns}

var sheetHeaders = map[string][]string{
	SheetFiles: ListingHeaders,
	SheetAudit: {
		"file", "mode", "rows_inspected", "rows", "columns", "n_duplicates",
		"duplicate_rate", "memory_mb", "object_columns", "has_labels",
		"unnamed_columns", "duplicate_columns", "whitespace_columns", "bom_columns",
	},
	SheetMissing: {"file", "column", "percent"},
	SheetLabels:  {"file", "value", "count"},
	SheetNumeric: append([]string{"file", "column"}, audit.StatNames...),
	SheetColumns: {"file", "position", "column"},
}

// WriteWorkbook renders a directory audit as an XLSX workbook at path
func WriteWorkbook(path string, report *inspect.DirectoryReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, report); err != nil {
		return errors.NewStorageError("failed to build workbook", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to save workbook %s", path), err)
	}
	return nil
}

func buildWorkbook(f *excelize.File, report *inspect.DirectoryReport) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	// New files start with a single "Sheet1" tab.
	if err := f.SetSheetName("Sheet1", SheetNames[0]); err != nil {
		return err
	}
	for _, name := range SheetNames[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	rows := workbookRows(report)
	for _, name := range SheetNames {
		sw := &sheetWriter{f: f, sheet: name}
		sw.row(toCells(sheetHeaders[name])...)
		for _, r := range rows[name] {
			sw.row(r...)
		}
		if sw.err != nil {
			return fmt.Errorf("sheet %s: %w", name, sw.err)
		}
		if err := f.SetRowStyle(name, 1, 1, header); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return nil
}

// workbookRows flattens the report into per-sheet rows
func workbookRows(report *inspect.DirectoryReport) map[string][][]interface{} {
	rows := make(map[string][][]interface{}, len(SheetNames))

	for _, f := range report.Files {
		rows[SheetFiles] = append(rows[SheetFiles], []interface{}{
			f.Name, f.SizeBytes, f.SizeMB, f.ModTime.UTC(),
		})
	}

	for _, r := range report.Reports {
		a := r.Audit
		rows[SheetAudit] = append(rows[SheetAudit], []interface{}{
			r.File, r.Mode, r.RowsInspected, a.Shape.Rows, a.Shape.Columns, a.NDuplicates,
			a.DuplicateRate, a.MemoryMB, strings.Join(a.ObjectColumns, "; "), formatBool(a.HasLabels()),
			strings.Join(r.Suspicious.Unnamed, "; "),
			strings.Join(r.Suspicious.Duplicate, "; "),
			strings.Join(r.Suspicious.Whitespace, "; "),
			strings.Join(r.Suspicious.BOM, "; "),
		})

		for _, m := range a.MissingTop {
			rows[SheetMissing] = append(rows[SheetMissing], []interface{}{r.File, m.Column, cellFloat(m.Percent)})
		}
		for _, l := range a.LabelCounts {
			rows[SheetLabels] = append(rows[SheetLabels], []interface{}{r.File, l.Value, l.Count})
		}
		for _, s := range r.Numeric {
			row := []interface{}{r.File, s.Column, s.Count}
			for _, v := range s.Values()[1:] {
				row = append(row, cellFloat(v))
			}
			rows[SheetNumeric] = append(rows[SheetNumeric], row)
		}
		for i, c := range r.Columns {
			rows[SheetColumns] = append(rows[SheetColumns], []interface{}{r.File, i, c})
		}
	}

	return rows
}

// sheetWriter appends rows to one sheet and keeps the first error
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (s *sheetWriter) row(values ...interface{}) {
	if s.err != nil {
		return
	}
	s.next++
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
