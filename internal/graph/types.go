package graph

import "github.com/mvp-joe/code-atlas/internal/lang"

// NodeKind distinguishes scanned files from external placeholders.
type NodeKind string

const (
	NodeFile     NodeKind = "file"
	NodeExternal NodeKind = "external"
)

// ExternalPrefix marks placeholder node ids for imports that resolve
// nowhere inside the scanned tree.
const ExternalPrefix = "external:"

// Node is a vertex in the file-level dependency graph.
type Node struct {
	ID       string        `json:"id"` // relative path, or external:<module>
	Kind     NodeKind      `json:"kind"`
	Language lang.Language `json:"language,omitempty"`
	Risk     string        `json:"risk,omitempty"` // annotation supplied by external rule catalogs
}

// EdgeKind is the relationship type carried on an edge.
type EdgeKind string

const (
	EdgeImport EdgeKind = "import"
)

// Edge is a directed dependency between two nodes.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
	Line int      `json:"line,omitempty"`
}

// Unit is one entry in the topological order: either a single file or a
// mandatory joint cluster whose members have no valid relative order.
type Unit struct {
	ID      string   `json:"id"` // lexicographically smallest member
	Members []string `json:"members"`
}

// Cluster reports whether the unit is a multi-member SCC.
func (u Unit) Cluster() bool { return len(u.Members) > 1 }

// CodeGraph is the codebase artifact: nodes, edges, and the derived
// structures downstream ordering depends on. The SCC partition is total and
// disjoint over internal nodes; the condensation is always acyclic.
type CodeGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// SCCs is the full partition, singletons included, in unit order.
	SCCs [][]string `json:"sccs"`

	// Units is the expanded topological order, leaf dependencies first.
	Units []Unit `json:"units"`

	// CriticalPath is the longest weighted path through the condensation,
	// as unit ids. It lower-bounds the minimum number of serial steps.
	CriticalPath []string `json:"critical_path"`

	// Unresolved counts imports that fell through to external placeholders.
	Unresolved int `json:"unresolved"`
}

// UnitOf returns the unit containing the given node id, if any.
func (g *CodeGraph) UnitOf(id string) (Unit, bool) {
	for _, u := range g.Units {
		for _, m := range u.Members {
			if m == id {
				return u, true
			}
		}
	}
	return Unit{}, false
}

// SymbolNode is a vertex in the call-graph variant.
type SymbolNode struct {
	ID        string `json:"id"` // file#name
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
}

// CallGraphEdge is a resolved call between two symbols.
type CallGraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Line int    `json:"line"`
}

// CallGraph is the symbol-level artifact consumed by reachability and
// dead-code analysis.
type CallGraph struct {
	Nodes []SymbolNode    `json:"nodes"`
	Edges []CallGraphEdge `json:"edges"`
}
