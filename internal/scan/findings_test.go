package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/code-atlas/internal/work"
)

// Test Plan for LoadFindings:
// - Valid document parses into per-file finding lists
// - Entries missing their File field inherit the map key
// - Keys written with ./ prefixes or backslashes collapse to clean relative paths
// - Invalid JSON fails
// - Missing file fails

func TestLoadFindings(t *testing.T) {
	t.Parallel()

	doc := `{
  "app/main.py": [
    {"pattern": "unsafe-eval", "start_line": 10, "end_line": 10, "risk": "high", "message": "eval on user input"},
    {"pattern": "todo-comment", "file": "app/main.py", "start_line": 3, "end_line": 3, "risk": "low"}
  ]
}`
	path := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	findings, err := LoadFindings(path)
	require.NoError(t, err)
	require.Len(t, findings["app/main.py"], 2)

	// The first entry omitted its File field; the map key fills it in.
	assert.Equal(t, "app/main.py", findings["app/main.py"][0].File)
	assert.Equal(t, work.RiskHigh, findings["app/main.py"][0].Risk)
}

func TestLoadFindings_NormalizesKeys(t *testing.T) {
	t.Parallel()

	doc := `{
  "./store.py": [
    {"pattern": "unsafe-eval", "start_line": 1, "end_line": 1, "risk": "high"}
  ],
  "app\\util.py": [
    {"pattern": "todo-comment", "start_line": 2, "end_line": 2, "risk": "low"}
  ]
}`
	path := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	findings, err := LoadFindings(path)
	require.NoError(t, err)

	// Test: ./-prefixed keys collapse to the record-style relative path
	require.Len(t, findings["store.py"], 1)
	assert.Equal(t, "store.py", findings["store.py"][0].File)
	// Test: Windows-style separators become forward slashes
	require.Len(t, findings["app/util.py"], 1)
}

func TestLoadFindings_InvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	_, err := LoadFindings(path)
	assert.Error(t, err)
}

func TestLoadFindings_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFindings(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
