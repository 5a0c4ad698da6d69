package inspect

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"csvaudit/internal/audit"
	"csvaudit/internal/files"
	"csvaudit/internal/infrastructure"
	"csvaudit/internal/table"
)

// DefaultWorkers bounds AuditDirectory when no worker count is configured
const DefaultWorkers = 4

// Inspector runs inspection operations with logging, tracing and metrics.
// It holds no per-call state and is safe for concurrent use.
type Inspector struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.InspectionMetrics
	workers  int
	defaults Request
	progress ProgressReporter
}

// Option configures an Inspector
type Option func(*Inspector)

// WithTracer sets the tracer used for operation spans
func WithTracer(tracer trace.Tracer) Option {
	return func(i *Inspector) {
		if tracer != nil {
			i.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments operations are recorded on
func WithMetrics(metrics *infrastructure.InspectionMetrics) Option {
	return func(i *Inspector) {
		if metrics != nil {
			i.metrics = metrics
		}
	}
}

// WithWorkers bounds the parallelism of AuditDirectory
func WithWorkers(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithDefaults sets the values used for unset fields of a Request. Counts
// left negative here fall through to the library defaults.
func WithDefaults(req Request) Option {
	return func(i *Inspector) {
		i.defaults = req
	}
}

// WithProgress sets the receiver of AuditDirectory progress events
func WithProgress(r ProgressReporter) Option {
	return func(i *Inspector) {
		i.progress = r
	}
}

// New creates an Inspector. A nil logger falls back to the global one.
func New(logger *slog.Logger, opts ...Option) *Inspector {
	i := &Inspector{
		logger:   infrastructure.WithComponent(logger, "inspector"),
		tracer:   tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		metrics:  infrastructure.NoopInspectionMetrics(),
		workers:  DefaultWorkers,
		defaults: DefaultRequest(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Workers returns the AuditDirectory parallelism
func (i *Inspector) Workers() int {
	return i.workers
}

// resolve fills unset fields of req from the inspector defaults
func (i *Inspector) resolve(req Request) Request {
	if req.NRows < 0 {
		req.NRows = i.defaults.NRows
	}
	if req.LabelColumn == "" {
		req.LabelColumn = i.defaults.LabelColumn
	}
	if req.MissingTopK < 0 {
		req.MissingTopK = i.defaults.MissingTopK
	}
	if req.MaxCols < 0 {
		req.MaxCols = i.defaults.MaxCols
	}
	return req
}

// ListCSVFiles lists the CSV files of dir
func (i *Inspector) ListCSVFiles(ctx context.Context, dir string) ([]files.CSVFile, error) {
	ctx, span, start := i.startSpan(ctx, "list_files", attribute.String("inspect.dir", dir))
	listing, err := files.ListCSVFiles(dir)
	i.finish(ctx, span, "list_files", start, err)
	if err != nil {
		i.logger.ErrorContext(ctx, "listing failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return nil, err
	}

	i.logger.InfoContext(ctx, "listed csv files", slog.String("dir", dir), slog.Int("count", len(listing)))
	return listing, nil
}

// PickFile returns dir/preferred if it exists, else the first listed CSV
func (i *Inspector) PickFile(ctx context.Context, dir, preferred string) (string, error) {
	ctx, span, start := i.startSpan(ctx, "pick_file",
		attribute.String("inspect.dir", dir),
		attribute.String("inspect.preferred", preferred),
	)
	path, err := files.PickFile(dir, preferred)
	i.finish(ctx, span, "pick_file", start, err)
	if err != nil {
		return "", err
	}

	i.logger.DebugContext(ctx, "picked file", slog.String("path", path))
	return path, nil
}

// LoadPeek loads at most nrows data rows of path. A negative nrows takes
// the inspector default.
func (i *Inspector) LoadPeek(ctx context.Context, path string, nrows int) (*table.Table, error) {
	if nrows < 0 {
		nrows = i.defaults.NRows
	}
	return i.load(ctx, path, Request{NRows: nrows})
}

// LoadFull loads every row of path
func (i *Inspector) LoadFull(ctx context.Context, path string) (*table.Table, error) {
	return i.load(ctx, path, Request{Full: true})
}

func (i *Inspector) load(ctx context.Context, path string, req Request) (*table.Table, error) {
	mode := req.Mode()
	ctx, span, start := i.startSpan(ctx, "load",
		attribute.String("inspect.file", filepath.Base(path)),
		attribute.String("inspect.mode", mode),
	)

	var (
		t   *table.Table
		err error
	)
	if req.Full {
		t, err = table.LoadFull(path)
	} else {
		t, err = table.LoadPeek(path, req.NRows)
	}
	if err == nil {
		span.SetAttributes(
			attribute.Int("inspect.rows", t.NRows()),
			attribute.Int("inspect.columns", t.NCols()),
		)
	}
	i.finish(ctx, span, "load", start, err)
	if err != nil {
		i.logger.ErrorContext(ctx, "load failed",
			slog.String("path", path),
			slog.String("mode", mode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	i.metrics.RecordLoad(ctx, mode, t.NRows())
	i.logger.InfoContext(ctx, "loaded csv",
		slog.String("file", filepath.Base(path)),
		slog.String("mode", mode),
		slog.Int("rows", t.NRows()),
		slog.Int("columns", t.NCols()),
		slog.Duration("duration", time.Since(start)),
	)
	return t, nil
}

// Audit runs the basic audit of t
func (i *Inspector) Audit(ctx context.Context, t *table.Table, opts audit.Options) audit.AuditResult {
	ctx, span, start := i.startSpan(ctx, "audit", attribute.String("inspect.label_col", opts.LabelColumn))
	result := audit.BasicAudit(t, opts)
	span.SetAttributes(
		attribute.Int("inspect.n_duplicates", result.NDuplicates),
		attribute.Float64("inspect.memory_mb", result.MemoryMB),
	)
	i.finish(ctx, span, "audit", start, nil)
	return result
}

// NumericSummary summarises the numeric columns of t
func (i *Inspector) NumericSummary(ctx context.Context, t *table.Table, maxCols int) []audit.NumericStats {
	ctx, span, start := i.startSpan(ctx, "numeric_summary", attribute.Int("inspect.max_cols", maxCols))
	summary := audit.NumericSummary(t, maxCols)
	span.SetAttributes(attribute.Int("inspect.numeric_columns", len(summary)))
	i.finish(ctx, span, "numeric_summary", start, nil)
	return summary
}

// SuspiciousColumns flags malformed column names of t
func (i *Inspector) SuspiciousColumns(ctx context.Context, t *table.Table) table.SuspiciousColumns {
	ctx, span, start := i.startSpan(ctx, "suspicious_columns")
	found := table.FindSuspiciousColumns(t)
	i.finish(ctx, span, "suspicious_columns", start, nil)

	if !found.Empty() {
		i.logger.WarnContext(ctx, "suspicious column names",
			slog.Any("unnamed", found.Unnamed),
			slog.Any("duplicate", found.Duplicate),
			slog.Any("whitespace", found.Whitespace),
			slog.Any("bom", found.BOM),
		)
	}
	return found
}

// CleanColumnNames returns a copy of t with BOMs and padding removed from the names
func (i *Inspector) CleanColumnNames(ctx context.Context, t *table.Table) *table.Table {
	ctx, span, start := i.startSpan(ctx, "clean_columns")
	cleaned := table.CleanColumnNames(t)
	i.finish(ctx, span, "clean_columns", start, nil)
	return cleaned
}

// AuditFile loads path and produces its full report. Suspicious columns
// are computed before the optional clean so the report shows what the
// file actually carries.
func (i *Inspector) AuditFile(ctx context.Context, path string, req Request) (*FileReport, error) {
	req = i.resolve(req)
	ctx, span, start := i.startSpan(ctx, "audit_file",
		attribute.String("inspect.file", filepath.Base(path)),
		attribute.String("inspect.mode", req.Mode()),
	)

	report, err := i.auditFile(ctx, path, req)
	i.finish(ctx, span, "audit_file", start, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (i *Inspector) auditFile(ctx context.Context, path string, req Request) (*FileReport, error) {
	t, err := i.load(ctx, path, req)
	if err != nil {
		return nil, err
	}

	suspicious := i.SuspiciousColumns(ctx, t)
	if req.Clean {
		t = i.CleanColumnNames(ctx, t)
	}

	return &FileReport{
		File:          filepath.Base(path),
		Mode:          req.Mode(),
		RowsInspected: t.NRows(),
		Columns:       t.Names(),
		Suspicious:    suspicious,
		Audit: i.Audit(ctx, t, audit.Options{
			LabelColumn: req.LabelColumn,
			MissingTopK: req.MissingTopK,
		}),
		Numeric: i.NumericSummary(ctx, t, req.MaxCols),
	}, nil
}

// AuditDirectory audits every CSV file of dir with bounded parallelism.
// Reports follow the listing order. The first failure cancels the
// remaining files and is returned.
func (i *Inspector) AuditDirectory(ctx context.Context, dir string, req Request) (*DirectoryReport, error) {
	req = i.resolve(req)
	runID := uuid.New().String()
	ctx, span, start := i.startSpan(ctx, "audit_directory",
		attribute.String("inspect.dir", dir),
		attribute.String("inspect.run_id", runID),
	)

	report, err := i.auditDirectory(ctx, runID, dir, req)
	i.finish(ctx, span, "audit_directory", start, err)
	if err != nil {
		i.report(ctx, ProgressEvent{RunID: runID, Stage: StageFailed, Error: err.Error()})
		i.logger.ErrorContext(ctx, "directory audit failed",
			slog.String("run_id", runID),
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	report.RunID = runID
	report.StartedAt = start
	report.DurationMS = time.Since(start).Milliseconds()
	i.report(ctx, ProgressEvent{
		RunID:     runID,
		Stage:     StageCompleted,
		Completed: len(report.Reports),
		Total:     len(report.Files),
	})

	i.logger.InfoContext(ctx, "directory audit completed",
		slog.String("run_id", runID),
		slog.Int("files", len(report.Files)),
		slog.Int64("duration_ms", report.DurationMS),
	)
	return report, nil
}

func (i *Inspector) auditDirectory(ctx context.Context, runID, dir string, req Request) (*DirectoryReport, error) {
	listing, err := i.ListCSVFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	total := len(listing)
	i.report(ctx, ProgressEvent{RunID: runID, Stage: StageStarted, Total: total})

	var completed atomic.Int64

	reports := make([]FileReport, len(listing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for idx, f := range listing {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := i.auditFile(gctx, f.Path, req)
			if err != nil {
				return err
			}
			reports[idx] = *r
			i.report(gctx, ProgressEvent{
				RunID:     runID,
				Stage:     StageFile,
				File:      r.File,
				Completed: int(completed.Add(1)),
				Total:     total,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DirectoryReport{Files: listing, Reports: reports}, nil
}
