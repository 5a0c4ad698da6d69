package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"csvaudit/internal/audit"
	"csvaudit/internal/files"
	"csvaudit/internal/inspect"
	"csvaudit/internal/table"
)

// peekRows is how many data rows peek prints
const peekRows = 5

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// formatPercent prints an undefined share as n/a
func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// progressPrinter writes one line per directory audit event. Events
// arrive from worker goroutines.
func progressPrinter(w io.Writer) inspect.ProgressFunc {
	var mu sync.Mutex
	return func(_ context.Context, ev inspect.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.Stage {
		case inspect.StageStarted:
			fmt.Fprintf(w, "auditing %d files\n", ev.Total)
		case inspect.StageFile:
			fmt.Fprintf(w, "[%d/%d] %s\n", ev.Completed, ev.Total, ev.File)
		case inspect.StageCompleted:
			fmt.Fprintf(w, "done: %d files\n", ev.Completed)
		case inspect.StageFailed:
			fmt.Fprintf(w, "failed: %s\n", ev.Error)
		}
	}
}

func printListing(w io.Writer, listing []files.CSVFile) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "FILE\tSIZE_MB\tMODIFIED")
	for _, f := range listing {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", f.Name, f.SizeMB, f.ModTime.Format(time.DateTime))
	}
	return tw.Flush()
}

func printPeek(w io.Writer, name string, t *table.Table) error {
	rows, cols := t.Shape()
	fmt.Fprintf(w, "%s: %d rows x %d columns\n\n", name, rows, cols)

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "#\tCOLUMN\tTYPE")
	for i, n := range t.Names() {
		fmt.Fprintf(tw, "%d\t%q\t%s\n", i, n, t.Type(i))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if rows == 0 || cols == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = newTabWriter(w)
	fmt.Fprintln(tw, strings.Join(t.Names(), "\t"))
	for r := 0; r < rows && r < peekRows; r++ {
		cells := make([]string, cols)
		for c := 0; c < cols; c++ {
			cells[c] = t.Column(c).Elem(r).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func printAudit(w io.Writer, result audit.AuditResult) error {
	fmt.Fprintf(w, "shape:           %d rows x %d columns\n", result.Shape.Rows, result.Shape.Columns)
	fmt.Fprintf(w, "duplicate rows:  %d (%.2f%%)\n", result.NDuplicates, result.DuplicateRate*100)
	fmt.Fprintf(w, "memory:          %.3f MB\n", result.MemoryMB)
	fmt.Fprintf(w, "object columns:  %d\n", len(result.ObjectColumns))

	fmt.Fprintln(w, "\nmissing values (top columns):")
	tw := newTabWriter(w)
	for _, m := range result.MissingTop {
		fmt.Fprintf(tw, "  %s\t%s\n", m.Column, formatPercent(m.Percent))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !result.HasLabels() {
		fmt.Fprintln(w, "\nlabel column not found")
		return nil
	}
	fmt.Fprintln(w, "\nlabel counts:")
	tw = newTabWriter(w)
	for _, lc := range result.LabelCounts {
		fmt.Fprintf(tw, "  %s\t%d\n", lc.Value, lc.Count)
	}
	return tw.Flush()
}

func printFileReport(w io.Writer, report *inspect.FileReport) error {
	fmt.Fprintf(w, "== %s (%s, %d rows inspected)\n", report.File, report.Mode, report.RowsInspected)
	if !report.Suspicious.Empty() {
		if err := printSuspicious(w, report.Suspicious); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	if err := printAudit(w, report.Audit); err != nil {
		return err
	}
	if len(report.Numeric) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return printSummary(w, report.Numeric)
}

func printDirectoryReport(w io.Writer, report *inspect.DirectoryReport) error {
	fmt.Fprintf(w, "run %s: %d files in %dms\n\n", report.RunID, len(report.Reports), report.DurationMS)
	for i := range report.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printFileReport(w, &report.Reports[i]); err != nil {
			return err
		}
	}
	return nil
}

func printSuspicious(w io.Writer, s table.SuspiciousColumns) error {
	if s.Empty() {
		_, err := fmt.Fprintln(w, "no suspicious column names")
		return err
	}

	groups := []struct {
		label string
		names []string
	}{
		{"unnamed", s.Unnamed},
		{"duplicate", s.Duplicate},
		{"whitespace", s.Whitespace},
		{"bom", s.BOM},
	}
	tw := newTabWriter(w)
	for _, g := range groups {
		if len(g.names) == 0 {
			continue
		}
		quoted := make([]string, len(g.names))
		for i, n := range g.names {
			quoted[i] = strconv.Quote(n)
		}
		fmt.Fprintf(tw, "%s:\t%s\n", g.label, strings.Join(quoted, ", "))
	}
	return tw.Flush()
}

func printNames(w io.Writer, title string, names []string) error {
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, n := range names {
		if _, err := fmt.Fprintf(w, "  %q\n", n); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, summary []audit.NumericStats) error {
	if len(summary) == 0 {
		_, err := fmt.Fprintln(w, "no numeric columns")
		return err
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "column\t"+strings.Join(audit.StatNames, "\t"))
	for _, s := range summary {
		values := s.Values()
		cells := make([]string, len(values))
		cells[0] = strconv.Itoa(s.Count)
		for i := 1; i < len(values); i++ {
			cells[i] = formatStat(values[i])
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.Column, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
