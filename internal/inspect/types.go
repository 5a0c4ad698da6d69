package inspect

import (
	"time"

	"csvaudit/internal/audit"
	"csvaudit/internal/files"
	"csvaudit/internal/table"
)

// Unset marks a Request count that takes the inspector default
const Unset = -1

// Request carries the per-call knobs of AuditFile and AuditDirectory.
// Negative counts and an empty LabelColumn take the inspector defaults;
// a zero count is honoured, so NRows 0 loads only the header.
type Request struct {
	NRows       int    `json:"nrows"`
	Full        bool   `json:"full"`
	LabelColumn string `json:"label_col" validate:"max=256"`
	MissingTopK int    `json:"missing_top_k"`
	MaxCols     int    `json:"max_cols"`
	Clean       bool   `json:"clean"`
}

// DefaultRequest returns a peek Request with every count unset
func DefaultRequest() Request {
	return Request{NRows: Unset, MissingTopK: Unset, MaxCols: Unset}
}

// Mode names the load strategy for logs and metrics
func (r Request) Mode() string {
	if r.Full {
		return "full"
	}
	return "peek"
}

// FileReport is everything the inspector learns about one CSV file
type FileReport struct {
	File          string                  `json:"file"`
	Mode          string                  `json:"mode"`
	RowsInspected int                     `json:"rows_inspected"`
	Columns       []string                `json:"columns"`
	Suspicious    table.SuspiciousColumns `json:"suspicious"`
	Audit         audit.AuditResult       `json:"audit"`
	Numeric       []audit.NumericStats    `json:"numeric_summary"`
}

// DirectoryReport is the audit of every CSV file in one directory
type DirectoryReport struct {
	RunID      string          `json:"run_id"`
	Files      []files.CSVFile `json:"files"`
	Reports    []FileReport    `json:"reports"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMS int64           `json:"duration_ms"`
}
