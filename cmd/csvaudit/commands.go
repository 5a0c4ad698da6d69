package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"csvaudit/internal/app"
	"csvaudit/internal/audit"
	"csvaudit/internal/config"
	apierrors "csvaudit/internal/errors"
	"csvaudit/internal/exporter"
	"csvaudit/internal/files"
	"csvaudit/internal/inspect"
	"csvaudit/internal/table"
)

// Export kinds
const (
	kindWorkbook = "workbook"
	kindSummary  = "summary"
	kindListing  = "listing"
)

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, e *env) error
}

var commands = []command{
	{name: "files", summary: "list the CSV files of the data directory", run: runFiles},
	{name: "pick", summary: "print the file the other commands default to", run: runPick},
	{name: "peek", args: " [file]", summary: "load a file and show its columns and first rows", run: runPeek},
	{name: "audit", args: " [file]", summary: "audit one file, or every file with -all", run: runAudit},
	{name: "columns", args: " [file]", summary: "report suspicious column names", run: runColumns},
	{name: "summary", args: " [file]", summary: "describe the numeric columns of a file", run: runSummary},
	{name: "export", args: " [file]", summary: "write a workbook, summary or listing report to -out", run: runExport},
	{name: "serve", summary: "run the HTTP API", run: runServe},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// options holds the parsed flags. Every subcommand accepts the full set
// and reads what it needs.
type options struct {
	dir         string
	file        string
	preferred   string
	nrows       int
	full        bool
	labelCol    string
	missingTopK int
	maxCols     int
	clean       bool
	out         string
	all         bool
	kind        string
	bom         bool
	port        int
	json        bool
	progress    bool
	verbose     bool
}

// bindFlags registers the flags on fs with defaults taken from cfg
func bindFlags(fs *flag.FlagSet, cfg *config.Config) *options {
	o := &options{}
	fs.StringVar(&o.dir, "dir", cfg.DataDir(), "directory holding the CSV files")
	fs.StringVar(&o.file, "file", "", "CSV file: a name inside -dir or a path (default: picked from -dir)")
	fs.StringVar(&o.preferred, "preferred", cfg.Data.PreferredFile, "file name preferred when -file is not given")
	fs.IntVar(&o.nrows, "nrows", cfg.Data.PeekRows, "data rows to load when not -full")
	fs.BoolVar(&o.full, "full", false, "load every row")
	fs.StringVar(&o.labelCol, "label-col", cfg.Data.LabelColumn, "column whose value distribution is reported")
	fs.IntVar(&o.missingTopK, "missing-top-k", cfg.Data.MissingTopK, "columns kept in the missingness ranking")
	fs.IntVar(&o.maxCols, "max-cols", cfg.Data.MaxCols, "numeric columns described by the summary")
	fs.BoolVar(&o.clean, "clean", cfg.Data.CleanColumns, "remove BOMs and padding from column names before auditing")
	fs.StringVar(&o.out, "out", "", "output file for export and summary")
	fs.BoolVar(&o.all, "all", false, "audit every CSV file in -dir")
	fs.StringVar(&o.kind, "kind", "", "export kind: workbook, summary or listing (default: from the -out extension)")
	fs.BoolVar(&o.bom, "bom", cfg.Export.IncludeBOM, "prefix exported CSV files with a UTF-8 BOM")
	fs.IntVar(&o.port, "port", cfg.Server.Port, "listen port for serve")
	fs.BoolVar(&o.json, "json", false, "print JSON instead of text")
	fs.BoolVar(&o.progress, "progress", false, "print per-file progress of directory audits to stderr")
	fs.BoolVar(&o.verbose, "v", false, "log at the configured level instead of warn")
	return o
}

// request converts the flags to an inspection request
func (o options) request() inspect.Request {
	return inspect.Request{
		NRows:       o.nrows,
		Full:        o.full,
		LabelColumn: o.labelCol,
		MissingTopK: o.missingTopK,
		MaxCols:     o.maxCols,
		Clean:       o.clean,
	}
}

// resolveFile returns the file a single-file command works on. Bare names
// are looked up in -dir; anything with a separator is used as given.
func (e *env) resolveFile(ctx context.Context) (string, error) {
	name := e.opts.file
	if name == "" {
		return e.inspector.PickFile(ctx, e.opts.dir, e.opts.preferred)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return name, nil
	}
	return files.ResolveInDir(e.opts.dir, name)
}

// loadTable loads the resolved file in the mode the flags ask for
func (e *env) loadTable(ctx context.Context) (string, *table.Table, error) {
	path, err := e.resolveFile(ctx)
	if err != nil {
		return "", nil, err
	}

	var t *table.Table
	if e.opts.full {
		t, err = e.inspector.LoadFull(ctx, path)
	} else {
		t, err = e.inspector.LoadPeek(ctx, path, e.opts.nrows)
	}
	if err != nil {
		return "", nil, err
	}
	return path, t, nil
}

func runFiles(ctx context.Context, e *env) error {
	listing, err := e.inspector.ListCSVFiles(ctx, e.opts.dir)
	if err != nil {
		return err
	}
	if e.opts.json {
		return writeJSON(e.stdout, listing)
	}
	return printListing(e.stdout, listing)
}

func runPick(ctx context.Context, e *env) error {
	path, err := e.inspector.PickFile(ctx, e.opts.dir, e.opts.preferred)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, path)
	return err
}

func runPeek(ctx context.Context, e *env) error {
	path, t, err := e.loadTable(ctx)
	if err != nil {
		return err
	}
	if e.opts.clean {
		t = e.inspector.CleanColumnNames(ctx, t)
	}
	return printPeek(e.stdout, filepath.Base(path), t)
}

func runAudit(ctx context.Context, e *env) error {
	if e.opts.all {
		report, err := e.inspector.AuditDirectory(ctx, e.opts.dir, e.opts.request())
		if err != nil {
			return err
		}
		if e.opts.json {
			return writeJSON(e.stdout, report)
		}
		return printDirectoryReport(e.stdout, report)
	}

	path, err := e.resolveFile(ctx)
	if err != nil {
		return err
	}
	report, err := e.inspector.AuditFile(ctx, path, e.opts.request())
	if err != nil {
		return err
	}
	if e.opts.json {
		return writeJSON(e.stdout, report)
	}
	return printFileReport(e.stdout, report)
}

func runColumns(ctx context.Context, e *env) error {
	_, t, err := e.loadTable(ctx)
	if err != nil {
		return err
	}

	suspicious := e.inspector.SuspiciousColumns(ctx, t)
	if e.opts.json {
		return writeJSON(e.stdout, suspicious)
	}
	if err := printSuspicious(e.stdout, suspicious); err != nil {
		return err
	}
	if e.opts.clean {
		return printNames(e.stdout, "cleaned columns", e.inspector.CleanColumnNames(ctx, t).Names())
	}
	return nil
}

func runSummary(ctx context.Context, e *env) error {
	summary, err := e.numericSummary(ctx)
	if err != nil {
		return err
	}

	if e.opts.out != "" {
		if err := exporter.NewCSVWriter(e.logger).WriteNumericSummaryCSV(e.opts.out, summary, e.opts.bom); err != nil {
			return err
		}
		_, err = fmt.Fprintf(e.stdout, "wrote %s\n", e.opts.out)
		return err
	}
	if e.opts.json {
		return writeJSON(e.stdout, summary)
	}
	return printSummary(e.stdout, summary)
}

func (e *env) numericSummary(ctx context.Context) ([]audit.NumericStats, error) {
	_, t, err := e.loadTable(ctx)
	if err != nil {
		return nil, err
	}
	if e.opts.clean {
		t = e.inspector.CleanColumnNames(ctx, t)
	}
	return e.inspector.NumericSummary(ctx, t, e.opts.maxCols), nil
}

// exportKind returns -kind, or the kind implied by the -out extension
func exportKind(kind, out string) (string, error) {
	if kind == "" {
		if strings.EqualFold(filepath.Ext(out), ".xlsx") {
			return kindWorkbook, nil
		}
		return kindSummary, nil
	}
	switch kind {
	case kindWorkbook, kindSummary, kindListing:
		return kind, nil
	}
	return "", apierrors.NewAppValidationError(fmt.Sprintf("unknown export kind %q", kind))
}

func runExport(ctx context.Context, e *env) error {
	if e.opts.out == "" {
		return apierrors.NewAppValidationError("export needs -out")
	}
	kind, err := exportKind(e.opts.kind, e.opts.out)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(e.logger)
	switch kind {
	case kindWorkbook:
		report, err := e.inspector.AuditDirectory(ctx, e.opts.dir, e.opts.request())
		if err != nil {
			return err
		}
		if err := exporter.WriteWorkbook(e.opts.out, report); err != nil {
			return err
		}
	case kindListing:
		listing, err := e.inspector.ListCSVFiles(ctx, e.opts.dir)
		if err != nil {
			return err
		}
		if err := writer.WriteListingCSV(e.opts.out, listing, e.opts.bom); err != nil {
			return err
		}
	default:
		summary, err := e.numericSummary(ctx)
		if err != nil {
			return err
		}
		if err := writer.WriteNumericSummaryCSV(e.opts.out, summary, e.opts.bom); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(e.stdout, "wrote %s report to %s\n", kind, e.opts.out)
	return err
}

func runServe(ctx context.Context, e *env) error {
	e.cfg.Data.Dir = e.opts.dir
	e.cfg.Data.PreferredFile = e.opts.preferred
	e.cfg.Server.Port = e.opts.port

	application, err := app.New(e.cfg, e.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stderr, "serving %s on %s\n", e.cfg.DataDir(), e.cfg.Addr())
	return application.Run(ctx)
}
