package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"csvaudit/internal/inspect"
	"csvaudit/internal/shared/testutil"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	t.Setenv("CSVAUDIT_CONFIG", "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func sampleDir(t *testing.T) string {
	return testutil.CSVDir(t, map[string]string{
		"flows.csv": testutil.FlowSample,
		"tiny.csv":  "a,b\n1,x\n2,y\n",
	})
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no arguments", args: nil, wantCode: exitUsage, wantStderr: "usage: csvaudit"},
		{name: "help", args: []string{"help"}, wantCode: exitOK, wantStdout: "commands:"},
		{name: "dash help", args: []string{"-h"}, wantCode: exitOK, wantStdout: "summary"},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: exitUsage, wantStderr: `unknown command "frobnicate"`},
		{name: "command help", args: []string{"audit", "-h"}, wantCode: exitOK, wantStderr: "-missing-top-k"},
		{name: "bad flag", args: []string{"files", "-nope"}, wantCode: exitUsage, wantStderr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantCode, res.code)
			if tt.wantStdout != "" {
				assert.Contains(t, res.stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, res.stderr, tt.wantStderr)
			}
		})
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	res := runCLI(t, "help")
	require.Equal(t, exitOK, res.code)
	for _, c := range commands {
		assert.Contains(t, res.stdout, c.name)
	}
}

func TestFilesCommand(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "files", "-dir", dir)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "FILE")
	flows := strings.Index(res.stdout, "flows.csv")
	tiny := strings.Index(res.stdout, "tiny.csv")
	require.True(t, flows >= 0 && tiny >= 0)
	assert.Less(t, flows, tiny)
}

func TestFilesCommandJSON(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "files", "-dir", dir, "-json")
	require.Equal(t, exitOK, res.code, res.stderr)

	var listing []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &listing))
	require.Len(t, listing, 2)
	assert.Equal(t, "flows.csv", listing[0]["file"])
}

func TestFilesCommandMissingDir(t *testing.T) {
	res := runCLI(t, "files", "-dir", filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "csvaudit files:")
	assert.Empty(t, res.stdout)
}

func TestPickCommand(t *testing.T) {
	dir := sampleDir(t)

	tests := []struct {
		name      string
		preferred string
		want      string
	}{
		{name: "first listed", preferred: "", want: "flows.csv"},
		{name: "preferred exists", preferred: "tiny.csv", want: "tiny.csv"},
		{name: "preferred missing", preferred: "nope.csv", want: "flows.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "pick", "-dir", dir, "-preferred", tt.preferred)
			require.Equal(t, exitOK, res.code, res.stderr)
			assert.Equal(t, tt.want, filepath.Base(strings.TrimSpace(res.stdout)))
		})
	}
}

func TestPeekCommand(t *testing.T) {
	dir := sampleDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default rows", args: []string{"-file", "flows.csv"}, want: "flows.csv: 4 rows x 4 columns"},
		{name: "limited rows", args: []string{"-file", "flows.csv", "-nrows", "2"}, want: "flows.csv: 2 rows x 4 columns"},
		{name: "header only", args: []string{"-file", "flows.csv", "-nrows", "0"}, want: "flows.csv: 0 rows x 4 columns"},
		{name: "full load", args: []string{"-file", "tiny.csv", "-full"}, want: "tiny.csv: 2 rows x 2 columns"},
		{name: "positional file", args: []string{"tiny.csv"}, want: "tiny.csv: 2 rows x 2 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"peek", "-dir", dir}, tt.args...)
			res := runCLI(t, args...)
			require.Equal(t, exitOK, res.code, res.stderr)
			assert.Contains(t, res.stdout, tt.want)
		})
	}
}

func TestAuditCommandHeaderOnly(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "audit", "-dir", dir, "-file", "tiny.csv", "-nrows", "0")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "shape:           0 rows x 2 columns")
	assert.Contains(t, res.stdout, "n/a")
}

func TestPeekCommandMissingFile(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "peek", "-dir", dir, "-file", "missing.csv")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "CSV not found")
}

func TestPeekCommandRejectsEscapingName(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "peek", "-dir", dir, "-file", "..")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "invalid file name")
}

func TestAuditCommand(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "audit", "-dir", dir, "-file", "flows.csv")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "== flows.csv (peek, 4 rows inspected)")
	assert.Contains(t, res.stdout, "duplicate rows:  1 (25.00%)")
	assert.Contains(t, res.stdout, "BENIGN")
	assert.Contains(t, res.stdout, "Flow Duration")
}

func TestAuditCommandWithoutLabel(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "audit", "-dir", dir, "-file", "tiny.csv")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "label column not found")
}

func TestAuditCommandAllJSON(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "audit", "-dir", dir, "-all", "-json")
	require.Equal(t, exitOK, res.code, res.stderr)

	var report inspect.DirectoryReport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	require.Len(t, report.Reports, 2)
	assert.Equal(t, "flows.csv", report.Reports[0].File)
	assert.Equal(t, "tiny.csv", report.Reports[1].File)
	assert.NotEmpty(t, report.RunID)
}

func TestColumnsCommand(t *testing.T) {
	dir := testutil.CSVDir(t, map[string]string{
		"bom.csv": "\ufeffid,,score\n1,x,2\n",
	})

	res := runCLI(t, "columns", "-dir", dir, "-clean")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "unnamed:")
	assert.Contains(t, res.stdout, "bom:")
	assert.Contains(t, res.stdout, "cleaned columns:")
	assert.Contains(t, res.stdout, `"id"`)
}

func TestColumnsCommandNoFindings(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "columns", "-dir", dir, "-file", "tiny.csv")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "no suspicious column names")
	assert.NotContains(t, res.stdout, "cleaned columns")
}

func TestSummaryCommandJSON(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "summary", "-dir", dir, "-file", "flows.csv", "-json")
	require.Equal(t, exitOK, res.code, res.stderr)

	var summary []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	require.Len(t, summary, 3)
	assert.Equal(t, "Flow Duration", summary[0]["column"])
	assert.EqualValues(t, 4, summary[0]["count"])
}

func TestSummaryCommandMaxCols(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "summary", "-dir", dir, "-file", "flows.csv", "-max-cols", "1")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Flow Duration")
	assert.NotContains(t, res.stdout, "Flow Bytes/s")
}

func TestSummaryCommandNoNumericColumns(t *testing.T) {
	dir := testutil.CSVDir(t, map[string]string{"text.csv": "a,b\nx,y\n"})

	res := runCLI(t, "summary", "-dir", dir)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "no numeric columns")
}

func TestSummaryCommandOut(t *testing.T) {
	dir := sampleDir(t)
	out := filepath.Join(t.TempDir(), "summary.csv")

	res := runCLI(t, "summary", "-dir", dir, "-file", "flows.csv", "-out", out, "-bom=false")
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "column,count,mean,std,min,1%,50%,99%,max\n"))
}

func TestExportKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "xlsx extension", out: "report.xlsx", want: kindWorkbook},
		{name: "upper case extension", out: "REPORT.XLSX", want: kindWorkbook},
		{name: "csv extension", out: "summary.csv", want: kindSummary},
		{name: "explicit listing", kind: "listing", out: "files.csv", want: kindListing},
		{name: "explicit wins over extension", kind: "summary", out: "x.xlsx", want: kindSummary},
		{name: "unknown kind", kind: "pdf", out: "x.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportKind(tt.kind, tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportCommandWorkbook(t *testing.T) {
	dir := sampleDir(t)
	out := filepath.Join(t.TempDir(), "reports", "audit.xlsx")

	res := runCLI(t, "export", "-dir", dir, "-out", out)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "wrote workbook report")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Files")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "flows.csv", rows[1][0])
}

func TestExportCommandListing(t *testing.T) {
	dir := sampleDir(t)
	out := filepath.Join(t.TempDir(), "files.csv")

	res := runCLI(t, "export", "-dir", dir, "-kind", "listing", "-out", out, "-bom=false")
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,size_bytes,size_mb,modified", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "flows.csv,"))
}

func TestExportCommandErrors(t *testing.T) {
	dir := sampleDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing out", args: []string{"export", "-dir", dir}, want: "export needs -out"},
		{name: "unknown kind", args: []string{"export", "-dir", dir, "-kind", "pdf", "-out", "x.pdf"}, want: `unknown export kind "pdf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, exitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestVerboseLogging(t *testing.T) {
	dir := sampleDir(t)

	quiet := runCLI(t, "files", "-dir", dir)
	require.Equal(t, exitOK, quiet.code)
	assert.NotContains(t, quiet.stderr, "listed csv files")

	verbose := runCLI(t, "files", "-dir", dir, "-v")
	require.Equal(t, exitOK, verbose.code)
	assert.Contains(t, verbose.stderr, "listed csv files")
}

func TestAuditCommandProgress(t *testing.T) {
	dir := sampleDir(t)

	res := runCLI(t, "audit", "-dir", dir, "-all", "-progress")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "auditing 2 files")
	assert.Contains(t, res.stderr, "/2] ")
	assert.Contains(t, res.stderr, "done: 2 files")
	assert.Contains(t, res.stdout, "== flows.csv")
	assert.Contains(t, res.stdout, "== tiny.csv")
}
