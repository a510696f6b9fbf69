package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/mvp-joe/code-atlas/internal/work"
)

// LoadFindings reads a per-file findings document produced by external rule
// catalogs: a JSON object mapping relative file paths to finding lists.
// Keys are cleaned (./store.py and store.py are the same file) so catalog
// path quirks don't keep findings from matching graph units.
func LoadFindings(findingsPath string) (map[string][]work.Finding, error) {
	data, err := os.ReadFile(findingsPath)
	if err != nil {
		return nil, err
	}
	var raw map[string][]work.Finding
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse findings JSON: %w", err)
	}
	findings := make(map[string][]work.Finding, len(raw))
	for file, fs := range raw {
		key := path.Clean(strings.ReplaceAll(file, `\`, "/"))
		// The map key is authoritative for grouping; entries that omit or
		// disagree on their File field follow it.
		for i := range fs {
			fs[i].File = key
		}
		findings[key] = append(findings[key], fs...)
	}
	return findings, nil
}
