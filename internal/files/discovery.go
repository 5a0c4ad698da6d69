package files

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"csvaudit/internal/errors"
)

// CSVPattern is the glob matched against directory entries
const CSVPattern = "*.csv"

// CSVFile describes one discovered CSV file
type CSVFile struct {
	Name      string    `json:"file"`
	Path      string    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	SizeMB    float64   `json:"size_mb"`
	ModTime   time.Time `json:"modified"`
}

// ListCSVFiles returns the CSV files directly inside dir, sorted by path.
func ListCSVFiles(dir string) ([]CSVFile, error) {
	abs := absPath(dir)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Raw data directory not found: %s", abs), abs)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read directory %s", abs), err)
	}

	var files []CSVFile
	for _, entry := range entries {
		name := entry.Name()
		if ok, _ := filepath.Match(CSVPattern, name); !ok {
			continue
		}

		path := filepath.Join(dir, name)
		// Stat follows symlinks so linked datasets report their real size.
		fi, err := os.Stat(path)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
		}
		if fi.IsDir() {
			continue
		}

		files = append(files, CSVFile{
			Name:      name,
			Path:      path,
			SizeBytes: fi.Size(),
			SizeMB:    SizeMB(fi.Size()),
			ModTime:   fi.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("No CSV files found in: %s", abs), abs)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// PickFile returns dir/preferredName when that path exists, whatever its
// extension, and the first listed CSV otherwise.
func PickFile(dir, preferredName string) (string, error) {
	files, err := ListCSVFiles(dir)
	if err != nil {
		return "", err
	}

	if preferredName != "" {
		candidate := filepath.Join(dir, preferredName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return files[0].Path, nil
}

// ResolveInDir joins a bare file name onto dir. Names that would escape
// dir are rejected with a validation error.
func ResolveInDir(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", errors.NewAppValidationError(fmt.Sprintf("invalid file name: %q", name))
	}
	return filepath.Join(dir, name), nil
}

// SizeMB converts a byte count to megabytes rounded to 2 decimals
func SizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
