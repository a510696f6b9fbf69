package extract

import "github.com/mvp-joe/code-atlas/internal/lang"

// ModuleScope is the caller context reported for calls that are not
// enclosed by any definition.
const ModuleScope = "module scope"

// ImportEdge is one import statement found in a file. Resolved stays empty
// until the graph builder runs its resolution pass.
type ImportEdge struct {
	File     string `json:"file"`               // importing file, relative path
	Raw      string `json:"raw"`                // module reference as written
	Resolved string `json:"resolved,omitempty"` // internal path or external:<module>
	Line     int    `json:"line"`
	Kind     string `json:"kind"` // import, include, require, use
}

// DefinitionSymbol is a named definition (function, class, interface,
// struct, method) with its span and enclosing scope.
type DefinitionSymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Scope     string `json:"scope,omitempty"` // enclosing definition name, empty at top level
}

// CallEdge is a call site with its best-effort caller context.
type CallEdge struct {
	Caller string `json:"caller"` // enclosing definition or ModuleScope
	Callee string `json:"callee"`
	Line   int    `json:"line"`
}

// Metrics are structural counts derived from the node-kind tables.
type Metrics struct {
	Lines     int `json:"lines"`
	Functions int `json:"functions"`
	Classes   int `json:"classes"`
}

// Record is the per-file extraction snapshot: the unit of truth for one
// file within a generation. Identical (content, language, query set) always
// produces an identical Record. After extraction only the graph builder
// touches it, filling in import resolutions.
type Record struct {
	File         string             `json:"file"` // relative path
	Language     lang.Language      `json:"language"`
	ContentHash  string             `json:"content_hash"`
	ParseSuccess bool               `json:"parse_success"`
	Degraded     bool               `json:"degraded"` // capability-gap fallback was used
	Imports      []ImportEdge       `json:"imports"`
	Definitions  []DefinitionSymbol `json:"symbols"`
	Calls        []CallEdge         `json:"calls"`
	Metrics      Metrics            `json:"metrics"`
}
