package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/code-atlas/internal/extract"
	"github.com/mvp-joe/code-atlas/internal/lang"
)

// Test Plan for BuildCallGraph:
// - Definitions become symbol nodes with stable file#name ids
// - Nested definitions carry their scope in the id
// - Same-file callees win over same-named symbols elsewhere
// - Cross-file callees resolve to the lexicographically first definer
// - Module-scope calls attach to a per-file pseudo symbol
// - Calls to undefined names are dropped, not errored

func TestBuildCallGraph_Basic(t *testing.T) {
	t.Parallel()

	records := []*extract.Record{
		{
			File:     "a.py",
			Language: lang.LangPython,
			Definitions: []extract.DefinitionSymbol{
				{Name: "helper", Kind: "function", StartLine: 1, EndLine: 2},
				{Name: "run", Kind: "function", StartLine: 4, EndLine: 6, Scope: "Runner"},
			},
			Calls: []extract.CallEdge{
				{Caller: "run", Callee: "helper", Line: 5},
			},
		},
	}
	cg := BuildCallGraph(records)

	ids := map[string]bool{}
	for _, n := range cg.Nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["a.py#helper"])
	assert.True(t, ids["a.py#Runner.run"])

	require.Len(t, cg.Edges, 1)
	assert.Equal(t, "a.py#helper", cg.Edges[0].To)
	assert.Equal(t, 5, cg.Edges[0].Line)
}

func TestBuildCallGraph_SameFileWins(t *testing.T) {
	t.Parallel()

	records := []*extract.Record{
		{
			File:        "a.py",
			Definitions: []extract.DefinitionSymbol{{Name: "init", Kind: "function", StartLine: 1}},
			Calls:       []extract.CallEdge{{Caller: extract.ModuleScope, Callee: "init", Line: 3}},
		},
		{
			File:        "b.py",
			Definitions: []extract.DefinitionSymbol{{Name: "init", Kind: "function", StartLine: 1}},
		},
	}
	cg := BuildCallGraph(records)

	require.Len(t, cg.Edges, 1)
	assert.Equal(t, "a.py#init", cg.Edges[0].To)
}

func TestBuildCallGraph_ModuleScopePseudoNode(t *testing.T) {
	t.Parallel()

	records := []*extract.Record{
		{
			File:        "main.py",
			Definitions: []extract.DefinitionSymbol{{Name: "setup", Kind: "function", StartLine: 1}},
			Calls:       []extract.CallEdge{{Caller: extract.ModuleScope, Callee: "setup", Line: 4}},
		},
	}
	cg := BuildCallGraph(records)

	var pseudo *SymbolNode
	for i := range cg.Nodes {
		if cg.Nodes[i].Kind == "module" {
			pseudo = &cg.Nodes[i]
		}
	}
	require.NotNil(t, pseudo, "module-scope caller needs a node")
	assert.Equal(t, "main.py", pseudo.File)

	require.Len(t, cg.Edges, 1)
	assert.Equal(t, pseudo.ID, cg.Edges[0].From)
}

func TestBuildCallGraph_AmbiguousCalleeDeterministic(t *testing.T) {
	t.Parallel()

	records := []*extract.Record{
		{
			File:  "caller.py",
			Calls: []extract.CallEdge{{Caller: extract.ModuleScope, Callee: "shared", Line: 1}},
		},
		{File: "x.py", Definitions: []extract.DefinitionSymbol{{Name: "shared", Kind: "function"}}},
		{File: "m.py", Definitions: []extract.DefinitionSymbol{{Name: "shared", Kind: "function"}}},
	}
	cg := BuildCallGraph(records)

	require.Len(t, cg.Edges, 1)
	assert.Equal(t, "m.py#shared", cg.Edges[0].To)
}

func TestBuildCallGraph_UndefinedCalleeDropped(t *testing.T) {
	t.Parallel()

	records := []*extract.Record{
		{
			File:  "a.py",
			Calls: []extract.CallEdge{{Caller: extract.ModuleScope, Callee: "print", Line: 1}},
		},
	}
	cg := BuildCallGraph(records)
	assert.Empty(t, cg.Edges)
}
