package http

import (
	"context"

	"csvaudit/internal/audit"
	"csvaudit/internal/files"
	"csvaudit/internal/inspect"
	"csvaudit/internal/table"
)

// InspectionService defines the inspection operations the handlers need.
// *inspect.Inspector implements it.
type InspectionService interface {
	ListCSVFiles(ctx context.Context, dir string) ([]files.CSVFile, error)
	PickFile(ctx context.Context, dir, preferred string) (string, error)
	LoadPeek(ctx context.Context, path string, nrows int) (*table.Table, error)
	LoadFull(ctx context.Context, path string) (*table.Table, error)
	NumericSummary(ctx context.Context, t *table.Table, maxCols int) []audit.NumericStats
	SuspiciousColumns(ctx context.Context, t *table.Table) table.SuspiciousColumns
	CleanColumnNames(ctx context.Context, t *table.Table) *table.Table
	AuditFile(ctx context.Context, path string, req inspect.Request) (*inspect.FileReport, error)
	AuditDirectory(ctx context.Context, dir string, req inspect.Request) (*inspect.DirectoryReport, error)
}

var _ InspectionService = (*inspect.Inspector)(nil)
