package table

import (
	"fmt"
	"os"
	"path/filepath"

	"csvaudit/internal/errors"
)

// DefaultPeekRows is the row cap LoadPeek applies when none is given
const DefaultPeekRows = 5000

// LoadPeek reads the header and at most nrows data rows from path, then
// strips whitespace from the column names. A negative nrows means
// DefaultPeekRows; zero loads the header alone.
func LoadPeek(path string, nrows int) (*Table, error) {
	if nrows < 0 {
		nrows = DefaultPeekRows
	}
	return load(path, ReadOptions{NRows: nrows, Limit: true})
}

// LoadFull reads every row from path, then strips whitespace from the
// column names.
func LoadFull(path string) (*Table, error) {
	return load(path, ReadOptions{})
}

func load(path string, opts ReadOptions) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		abs := path
		if a, aerr := filepath.Abs(path); aerr == nil {
			abs = a
		}
		return nil, errors.NewNotFoundError(fmt.Sprintf("CSV not found: %s", abs), abs)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := Read(file, opts)
	if err != nil {
		return nil, err
	}
	return StripColumnNames(t), nil
}
