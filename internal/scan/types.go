package scan

import (
	"time"

	"github.com/mvp-joe/code-atlas/internal/extract"
	"github.com/mvp-joe/code-atlas/internal/graph"
	"github.com/mvp-joe/code-atlas/internal/lang"
	"github.com/mvp-joe/code-atlas/internal/work"
)

// Options configures one generation. A root path plus exclusion globs is
// enough for minimum viable operation; everything else has defaults.
type Options struct {
	Root     string
	Excludes []string
	Workers  int

	// FindingsPath points at a JSON file of per-file findings supplied by
	// external rule catalogs. Empty means no findings and no work items.
	FindingsPath string

	// CallGraph enables the symbol-level call-graph artifact.
	CallGraph bool

	// Weight selects the critical-path node weighting; empty means
	// WeightConstant.
	Weight string

	Progress Progress
}

// Critical-path weighting modes.
const (
	WeightConstant = "constant" // every node counts as one serial step
	WeightLines    = "lines"    // nodes weigh their extracted line count
)

// Progress receives scan lifecycle callbacks. OnFileProcessed is invoked
// from extraction workers as files finish and must be safe for concurrent
// use; the other callbacks come from the coordinating goroutine.
type Progress interface {
	OnScanStart(totalFiles int)
	OnFileProcessed(processed, total int, file string)
	OnGraphComplete(nodes, edges int, duration time.Duration)
}

// SkippedFile records a file excluded from analysis and why. Silently
// analyzing a file as if absent is a defect; every skip is visible here.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LangStats aggregates per-language outcomes for the scan summary.
type LangStats struct {
	Files         int `json:"files"`
	ParseFailures int `json:"parse_failures"`
	Degraded      int `json:"degraded"`
}

// Stats is the scan-level summary: processed is always separated from
// skipped-with-reason.
type Stats struct {
	Processed      int                          `json:"processed"`
	Skipped        []SkippedFile                `json:"skipped"`
	ByLanguage     map[lang.Language]*LangStats `json:"by_language"`
	CapabilityGaps []lang.Language              `json:"capability_gaps"`

	// UnmatchedFindings lists finding paths that matched no scanned file;
	// their findings produced no work items and that must be visible.
	UnmatchedFindings []string      `json:"unmatched_findings,omitempty"`
	Duration          time.Duration `json:"duration_ns"`
}

// Result is the complete artifact set of one generation. Records and graph
// are rebuilt wholesale each generation; there is no incremental patching.
type Result struct {
	Generation string            `json:"generation"`
	Root       string            `json:"root"`
	Records    []*extract.Record `json:"records"`
	Graph      *graph.CodeGraph  `json:"graph"`
	CallGraph  *graph.CallGraph  `json:"call_graph,omitempty"`
	Items      []work.WorkItem   `json:"work_items"`
	Hashes     map[string]string `json:"hashes"` // file -> content hash
	Stats      Stats             `json:"stats"`
}
