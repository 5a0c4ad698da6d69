package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FlowSample is a small network-flow style capture with a padded header,
// a duplicate row and missing values in two columns.
const FlowSample = " Flow Duration, Total Fwd Packets,Flow Bytes/s, Label\n" +
	"10,2,1.5,BENIGN\n" +
	"20,3,,DDoS\n" +
	"10,2,1.5,BENIGN\n" +
	"40,,NaN,BENIGN\n"

// WriteCSV writes content to dir/name and returns the full path.
func WriteCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CSVDir creates a temporary directory holding the given name→content files.
func CSVDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteCSV(t, dir, name, content)
	}
	return dir
}
