package work

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mvp-joe/code-atlas/internal/extract"
	"github.com/mvp-joe/code-atlas/internal/graph"
)

// Decomposer walks the graph's topological unit order and turns per-file
// findings into an ordered list of atomic work items. Leaf units are
// decomposed first; within a unit, findings are grouped by enclosing
// definition so each item stays minimal and self-contained.
type Decomposer struct {
	root string // for loading surrounding source
}

// NewDecomposer creates a decomposer that reads file context from root.
func NewDecomposer(root string) *Decomposer {
	return &Decomposer{root: root}
}

// Decompose emits work items in execution order, plus the finding paths
// that matched no unit in the graph (so callers can surface them instead
// of dropping their findings silently). Decomposition is idempotent:
// rerunning on unchanged input yields the identical ordered id set.
// Decomposition must not start before the graph's unit order is final.
func (d *Decomposer) Decompose(g *graph.CodeGraph, records []*extract.Record, findings map[string][]Finding) ([]WorkItem, []string, error) {
	defs := make(map[string][]extract.DefinitionSymbol, len(records))
	for _, r := range records {
		defs[r.File] = r.Definitions
	}

	var items []WorkItem
	matched := make(map[string]bool, len(findings))
	for _, unit := range g.Units {
		members := make([]string, len(unit.Members))
		copy(members, unit.Members)
		sort.Strings(members)

		for _, file := range members {
			fs := findings[file]
			if len(fs) == 0 {
				continue
			}
			matched[file] = true
			content, err := d.readFile(file)
			if err != nil {
				return nil, nil, fmt.Errorf("load context for %s: %w", file, err)
			}
			for _, f := range groupByDefinition(fs, defs[file]) {
				items = append(items, d.item(f, unit.ID, content, defs[file]))
			}
		}
	}

	var unmatched []string
	for file, fs := range findings {
		if len(fs) > 0 && !matched[file] {
			unmatched = append(unmatched, file)
		}
	}
	sort.Strings(unmatched)
	return items, unmatched, nil
}

// groupByDefinition orders findings so that all findings inside the same
// enclosing definition are adjacent, definitions in source order, module
// scope last. Within a group the line number decides.
func groupByDefinition(fs []Finding, defs []extract.DefinitionSymbol) []Finding {
	sorted := make([]Finding, len(fs))
	copy(sorted, fs)
	sort.SliceStable(sorted, func(i, j int) bool {
		di := enclosing(defs, sorted[i].StartLine)
		dj := enclosing(defs, sorted[j].StartLine)
		si, sj := defStart(di), defStart(dj)
		if si != sj {
			return si < sj
		}
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].Pattern < sorted[j].Pattern
	})
	return sorted
}

// enclosing finds the innermost definition whose span covers the line.
func enclosing(defs []extract.DefinitionSymbol, line int) *extract.DefinitionSymbol {
	var best *extract.DefinitionSymbol
	for i := range defs {
		d := &defs[i]
		if line < d.StartLine || line > d.EndLine {
			continue
		}
		if best == nil || d.EndLine-d.StartLine < best.EndLine-best.StartLine {
			best = d
		}
	}
	return best
}

func defStart(d *extract.DefinitionSymbol) int {
	if d == nil {
		return 1 << 30 // module scope sorts after all definitions
	}
	return d.StartLine
}

func (d *Decomposer) item(f Finding, unitID, content string, defs []extract.DefinitionSymbol) WorkItem {
	enclosingName := ""
	if def := enclosing(defs, f.StartLine); def != nil {
		enclosingName = def.Name
	}
	return WorkItem{
		ID:        ItemID(f.File, f.Pattern, f.StartLine),
		File:      f.File,
		StartLine: f.StartLine,
		EndLine:   f.EndLine,
		Pattern:   f.Pattern,
		Message:   f.Message,
		Risk:      f.Risk,
		Tier:      tierFor(f),
		Unit:      unitID,
		Enclosing: enclosingName,
		Context:   extractSnippet(content, f.StartLine, f.EndLine),
		Before:    exactSpan(content, f.StartLine, f.EndLine),
		After:     f.Suggested,
		Verify:    verificationFor(f),
	}
}

func (d *Decomposer) readFile(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ItemID derives the stable work item id. It is a pure function of
// (file, pattern, line) and independent of decomposition order, which makes
// re-decomposition resumable.
func ItemID(file, pattern string, line int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d", file, pattern, line)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
