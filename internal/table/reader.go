package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// ErrNoColumns is returned for input without a header row
var ErrNoColumns = errors.New("no columns to parse from file")

// FieldCountError reports a data row with more fields than the header
type FieldCountError struct {
	Line     int
	Expected int
	Got      int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("error tokenizing data: expected %d fields in line %d, saw %d", e.Expected, e.Line, e.Got)
}

// naTokens are the cell values read as missing
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// gotaNA is the literal gota series read as a missing element
const gotaNA = "NaN"

// ReadOptions controls Read
type ReadOptions struct {
	// NRows caps the number of data rows when Limit is set. Zero reads
	// only the header.
	NRows int
	Limit bool
}

// IsNAToken reports whether a raw cell value loads as missing
func IsNAToken(v string) bool {
	_, ok := naTokens[v]
	return ok
}

// Read parses CSV from r. Column names are kept exactly as read apart from
// blank-name placeholders and duplicate mangling. A leading UTF-8 BOM is
// kept on the first name, even when that name is quoted.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	br := bufio.NewReader(r)
	hasBOM := false
	if prefix, _ := br.Peek(len(BOM)); bytes.Equal(prefix, []byte(BOM)) {
		_, _ = br.Discard(len(BOM))
		hasBOM = true
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, err
	}
	if hasBOM {
		header[0] = BOM + header[0]
	}
	names := headerNames(header)

	raw := make([][]string, len(names))
	rows := 0
	for !opts.Limit || rows < opts.NRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(names) {
			line, _ := reader.FieldPos(0)
			return nil, &FieldCountError{Line: line, Expected: len(names), Got: len(record)}
		}
		for i := range names {
			v := gotaNA
			if i < len(record) && !IsNAToken(record[i]) {
				v = record[i]
			}
			raw[i] = append(raw[i], v)
		}
		rows++
	}

	t := &Table{columns: make([]series.Series, len(names)), nrows: rows}
	for i, name := range names {
		kind, values := inferColumn(raw[i])
		t.columns[i] = series.New(values, kind, name)
	}
	return t, nil
}

// headerNames applies the blank-name placeholder and duplicate mangling
func headerNames(header []string) []string {
	names := make([]string, len(header))
	counts := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		cur := counts[name]
		for cur > 0 {
			counts[name] = cur + 1
			name = fmt.Sprintf("%s.%d", name, cur)
			cur = counts[name]
		}
		names[i] = name
		counts[name] = cur + 1
	}
	return names
}

// inferColumn picks the narrowest type holding every present value and
// returns the values to feed series.New. Missing cells are gotaNA.
func inferColumn(values []string) (series.Type, []string) {
	if len(values) == 0 {
		return series.String, values
	}

	present, missing := 0, 0
	isInt, isFloat, isBool := true, true, true
	for _, v := range values {
		if v == gotaNA {
			missing++
			continue
		}
		present++
		s := strings.TrimSpace(v)
		if isInt {
			if _, err := strconv.Atoi(s); err != nil {
				isInt = false
			}
		}
		if isFloat && !isInt {
			if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsNaN(f) {
				isFloat = false
			}
		}
		if isBool {
			switch strings.ToLower(v) {
			case "true", "false":
			default:
				isBool = false
			}
		}
	}

	switch {
	case present == 0:
		return series.Float, values
	case isInt && missing == 0:
		return series.Int, trimmed(values)
	case isInt || isFloat:
		return series.Float, trimmed(values)
	case isBool && missing == 0:
		return series.Bool, values
	default:
		return series.String, values
	}
}

func trimmed(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
