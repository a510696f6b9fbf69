package graph

import (
	"sort"

	"github.com/mvp-joe/code-atlas/internal/extract"
)

// BuildCallGraph builds the optional symbol-level variant: definition nodes
// with call edges resolved by callee name plus best-effort scope matching.
// A callee defined in the caller's own file wins over any other candidate;
// otherwise ambiguity resolves to the lexicographically first defining file
// so the artifact is reproducible.
func BuildCallGraph(records []*extract.Record) *CallGraph {
	sorted := make([]*extract.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	cg := &CallGraph{}
	// byName indexes definition symbol ids by bare name.
	byName := make(map[string][]string)
	inFile := make(map[string]map[string]string) // file -> name -> symbol id

	for _, r := range sorted {
		if inFile[r.File] == nil {
			inFile[r.File] = make(map[string]string)
		}
		for _, d := range r.Definitions {
			id := symbolID(r.File, d)
			cg.Nodes = append(cg.Nodes, SymbolNode{
				ID:        id,
				Name:      d.Name,
				Kind:      d.Kind,
				File:      r.File,
				StartLine: d.StartLine,
			})
			byName[d.Name] = append(byName[d.Name], id)
			if _, taken := inFile[r.File][d.Name]; !taken {
				inFile[r.File][d.Name] = id
			}
		}
	}
	for _, ids := range byName {
		sort.Strings(ids)
	}

	pseudo := make(map[string]bool)
	for _, r := range sorted {
		for _, c := range r.Calls {
			from, ok := inFile[r.File][c.Caller]
			if !ok {
				// Module-scope calls attach to a per-file pseudo symbol.
				from = r.File + "#" + extract.ModuleScope
				if !pseudo[from] {
					pseudo[from] = true
					cg.Nodes = append(cg.Nodes, SymbolNode{
						ID: from, Name: extract.ModuleScope, Kind: "module", File: r.File,
					})
				}
			}
			to := ""
			if id, ok := inFile[r.File][c.Callee]; ok {
				to = id
			} else if ids := byName[c.Callee]; len(ids) > 0 {
				to = ids[0]
			}
			if to == "" {
				continue // callee not defined anywhere in the tree
			}
			cg.Edges = append(cg.Edges, CallGraphEdge{From: from, To: to, Line: c.Line})
		}
	}
	return cg
}

func symbolID(file string, d extract.DefinitionSymbol) string {
	if d.Scope != "" {
		return file + "#" + d.Scope + "." + d.Name
	}
	return file + "#" + d.Name
}
