package table

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
)

// Table is an ordered sequence of equally long columns. Column names may
// repeat or be empty.
type Table struct {
	columns []series.Series
	nrows   int
}

// New builds a table from columns of equal length. The series are copied.
func New(columns ...series.Series) (*Table, error) {
	t := &Table{columns: make([]series.Series, len(columns))}
	for i, col := range columns {
		if i == 0 {
			t.nrows = col.Len()
		} else if col.Len() != t.nrows {
			return nil, fmt.Errorf("column %d (%q) has %d rows, expected %d", i, col.Name, col.Len(), t.nrows)
		}
		t.columns[i] = col.Copy()
	}
	return t, nil
}

// NRows returns the number of data rows
func (t *Table) NRows() int { return t.nrows }

// NCols returns the number of columns
func (t *Table) NCols() int { return len(t.columns) }

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) { return t.nrows, len(t.columns) }

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the i-th column. The returned series shares storage with
// the table and must not be modified.
func (t *Table) Column(i int) series.Series {
	return t.columns[i]
}

// Index returns the position of the first column called name, or -1.
func (t *Table) Index(name string) int {
	for i, col := range t.columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Type returns the storage type of the i-th column
func (t *Table) Type(i int) series.Type {
	return t.columns[i].Type()
}

// WithNames returns a copy of t whose columns carry names.
func (t *Table) WithNames(names []string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(t.columns))
	}
	out := &Table{columns: make([]series.Series, len(t.columns)), nrows: t.nrows}
	for i, col := range t.columns {
		c := col.Copy()
		c.Name = names[i]
		out.columns[i] = c
	}
	return out, nil
}

// renameWith applies fn to every column name
func (t *Table) renameWith(fn func(string) string) *Table {
	names := t.Names()
	for i, name := range names {
		names[i] = fn(name)
	}
	out, _ := t.WithNames(names)
	return out
}

// IsMissing reports whether a cell holds no value
func IsMissing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	if e.Type() == series.Float {
		return math.IsNaN(e.Float())
	}
	return false
}

// CellKey renders a cell for equality and counting. Missing cells share
// one key, so two missing values compare equal, and -0 keys as 0.
func CellKey(e series.Element) string {
	if IsMissing(e) {
		return missingKey
	}
	switch e.Type() {
	case series.Int:
		v, _ := e.Int()
		return strconv.Itoa(v)
	case series.Float:
		f := e.Float()
		if f == 0 { // -0 becomes 0
			f = 0
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case series.Bool:
		v, _ := e.Bool()
		return strconv.FormatBool(v)
	default:
		return e.String()
	}
}

const missingKey = "\x00<NA>"
