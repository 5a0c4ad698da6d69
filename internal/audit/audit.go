// Package audit computes the first-pass data-quality audit of a table:
// shape, duplicate rows, memory footprint, text columns, missingness and
// the label distribution, plus per-column numeric summaries.
package audit

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"csvaudit/internal/table"
)

// Defaults applied to an empty LabelColumn and a negative MissingTopK
const (
	DefaultLabelColumn = "Label"
	DefaultMissingTopK = 15
)

// Options tunes BasicAudit
type Options struct {
	LabelColumn string `json:"label_col"`
	MissingTopK int    `json:"missing_top_k"`
}

// DefaultOptions returns the options BasicAudit uses when none are chosen
func DefaultOptions() Options {
	return Options{LabelColumn: DefaultLabelColumn, MissingTopK: DefaultMissingTopK}
}

func (o Options) withDefaults() Options {
	if o.LabelColumn == "" {
		o.LabelColumn = DefaultLabelColumn
	}
	if o.MissingTopK < 0 {
		o.MissingTopK = DefaultMissingTopK
	}
	return o
}

// Shape is the (rows, columns) pair of a table
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// MissingStat is the share of missing cells in one column
type MissingStat struct {
	Column  string  `json:"column"`
	Percent float64 `json:"percent"`
}

// MarshalJSON renders the undefined share of an empty table as null
func (m MissingStat) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column  string   `json:"column"`
		Percent *float64 `json:"percent"`
	}{Column: m.Column, Percent: finite(m.Percent)})
}

// LabelCount is the number of rows carrying one label value
type LabelCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// AuditResult bundles the audit of one table. LabelCounts is nil when
// the table has no label column.
type AuditResult struct {
	Shape         Shape         `json:"shape"`
	NDuplicates   int           `json:"n_duplicates"`
	DuplicateRate float64       `json:"duplicate_rate"`
	MemoryMB      float64       `json:"memory_mb"`
	ObjectColumns []string      `json:"object_columns"`
	MissingTop    []MissingStat `json:"missing_top"`
	LabelCounts   []LabelCount  `json:"label_counts"`
}

// HasLabels reports whether the label column was found
func (r AuditResult) HasLabels() bool {
	return r.LabelCounts != nil
}

// BasicAudit audits t. The table is only read.
func BasicAudit(t *table.Table, opts Options) AuditResult {
	opts = opts.withDefaults()
	rows, cols := t.Shape()

	result := AuditResult{
		Shape:         Shape{Rows: rows, Columns: cols},
		NDuplicates:   CountDuplicateRows(t),
		MemoryMB:      float64(MemoryUsage(t)) / (1024 * 1024),
		ObjectColumns: ObjectColumns(t),
		MissingTop:    MissingPercent(t),
	}

	if rows > 0 {
		result.DuplicateRate = float64(result.NDuplicates) / float64(rows)
	}

	if len(result.MissingTop) > opts.MissingTopK {
		result.MissingTop = result.MissingTop[:opts.MissingTopK]
	}

	if idx := t.Index(opts.LabelColumn); idx >= 0 {
		result.LabelCounts = ValueCounts(t.Column(idx))
	}

	return result
}

// CountDuplicateRows counts rows equal on every column to an earlier row.
// Missing cells compare equal to each other.
func CountDuplicateRows(t *table.Table) int {
	rows, cols := t.Shape()
	seen := make(map[string]struct{}, rows)
	dups := 0

	var key strings.Builder
	for r := 0; r < rows; r++ {
		key.Reset()
		for c := 0; c < cols; c++ {
			cell := table.CellKey(t.Column(c).Elem(r))
			key.WriteString(strconv.Itoa(len(cell)))
			key.WriteByte(':')
			key.WriteString(cell)
		}
		k := key.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// ObjectColumns returns the names of string-typed columns in order
func ObjectColumns(t *table.Table) []string {
	out := []string{}
	for i, name := range t.Names() {
		if t.Type(i) == series.String {
			out = append(out, name)
		}
	}
	return out
}

// MissingPercent returns every column's missing share, largest first.
// Ties keep column order. A table without rows has an undefined share,
// reported as NaN for every column.
func MissingPercent(t *table.Table) []MissingStat {
	rows := t.NRows()
	stats := make([]MissingStat, t.NCols())
	for i, name := range t.Names() {
		stats[i].Column = name
		if rows == 0 {
			stats[i].Percent = math.NaN()
			continue
		}
		col := t.Column(i)
		missing := 0
		for r := 0; r < rows; r++ {
			if table.IsMissing(col.Elem(r)) {
				missing++
			}
		}
		stats[i].Percent = float64(missing) / float64(rows) * 100
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Percent > stats[j].Percent
	})
	return stats
}

// ValueCounts counts the present values of s, most frequent first. Ties
// keep first-seen order.
func ValueCounts(s series.Series) []LabelCount {
	counts := []LabelCount{}
	index := make(map[string]int)
	for r := 0; r < s.Len(); r++ {
		e := s.Elem(r)
		if table.IsMissing(e) {
			continue
		}
		v := table.CellKey(e)
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, LabelCount{Value: v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
