package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/mvp-joe/code-atlas/internal/extract"
)

// sourceExtensions are the suffixes tried when a module reference omits its
// file extension.
var sourceExtensions = []string{
	".py", ".ts", ".tsx", ".js", ".jsx", ".rb", ".rs",
	".php", ".java", ".c", ".h", ".go", ".sh",
}

// Index is the lookup structure the resolution strategies share: every
// internal path, plus stem (extension-less) forms for module-style
// references.
type Index struct {
	exact map[string]string   // relpath -> relpath
	stems map[string][]string // relpath without extension -> relpaths
}

// NewIndex builds the path index over a generation's records.
func NewIndex(records []*extract.Record) *Index {
	idx := &Index{
		exact: make(map[string]string, len(records)),
		stems: make(map[string][]string),
	}
	for _, r := range records {
		idx.exact[r.File] = r.File
		stem := strings.TrimSuffix(r.File, path.Ext(r.File))
		idx.stems[stem] = append(idx.stems[stem], r.File)
	}
	for _, files := range idx.stems {
		sort.Strings(files)
	}
	return idx
}

// lookup tries a candidate path as-is, then with each source extension,
// then as a stem. Ambiguous stems resolve to the lexicographically first
// file for reproducibility.
func (idx *Index) lookup(candidate string) (string, bool) {
	candidate = path.Clean(candidate)
	if p, ok := idx.exact[candidate]; ok {
		return p, true
	}
	for _, ext := range sourceExtensions {
		if p, ok := idx.exact[candidate+ext]; ok {
			return p, true
		}
	}
	if files := idx.stems[candidate]; len(files) > 0 {
		return files[0], true
	}
	return "", false
}

// Strategy is one step in the resolution chain. Strategies are external and
// swappable so the core never hard-codes a single language's import
// semantics.
type Strategy interface {
	Name() string
	Resolve(fromFile, raw string, idx *Index) (string, bool)
}

// Resolver resolves raw module references against the scanned tree by
// trying each strategy in order. References no strategy claims become
// external placeholders; an edge is never dropped.
type Resolver struct {
	idx        *Index
	strategies []Strategy
}

// NewResolver builds the default chain: exact internal path, then
// package-relative, then dotted module form.
func NewResolver(records []*extract.Record, extra ...Strategy) *Resolver {
	strategies := []Strategy{exactStrategy{}, relativeStrategy{}, dottedStrategy{}}
	strategies = append(strategies, extra...)
	return &Resolver{idx: NewIndex(records), strategies: strategies}
}

// Resolve returns the internal target for an import, or an
// external:<module> placeholder id when nothing internal matches.
func (r *Resolver) Resolve(fromFile, raw string) (target string, external bool) {
	for _, s := range r.strategies {
		if t, ok := s.Resolve(fromFile, raw, r.idx); ok {
			return t, false
		}
	}
	return ExternalPrefix + raw, true
}

// exactStrategy matches the reference against internal paths verbatim.
type exactStrategy struct{}

func (exactStrategy) Name() string { return "exact" }

func (exactStrategy) Resolve(_, raw string, idx *Index) (string, bool) {
	return idx.lookup(raw)
}

// relativeStrategy resolves references relative to the importing file's
// directory: explicit ./ and ../ forms, Python leading-dot imports, and
// bare sibling references like C's "util.h".
type relativeStrategy struct{}

func (relativeStrategy) Name() string { return "relative" }

func (relativeStrategy) Resolve(fromFile, raw string, idx *Index) (string, bool) {
	dir := path.Dir(fromFile)

	if strings.HasPrefix(raw, ".") && !strings.HasPrefix(raw, "./") && !strings.HasPrefix(raw, "../") {
		// Python-style relative import: one leading dot per level up,
		// remaining dots are path separators.
		rest := raw
		up := 0
		for strings.HasPrefix(rest, ".") {
			rest = rest[1:]
			up++
		}
		base := dir
		for i := 1; i < up; i++ {
			base = path.Dir(base)
		}
		candidate := base
		if rest != "" {
			candidate = path.Join(base, strings.ReplaceAll(rest, ".", "/"))
		}
		return idx.lookup(candidate)
	}

	return idx.lookup(path.Join(dir, raw))
}

// dottedStrategy converts module-path references (a.b.c, a::b) into slash
// paths and retries the lookup.
type dottedStrategy struct{}

func (dottedStrategy) Name() string { return "dotted" }

func (dottedStrategy) Resolve(_, raw string, idx *Index) (string, bool) {
	var candidate string
	switch {
	case strings.Contains(raw, "::"):
		candidate = strings.ReplaceAll(raw, "::", "/")
	case strings.Contains(raw, ".") && !strings.Contains(raw, "/"):
		candidate = strings.ReplaceAll(raw, ".", "/")
	default:
		return "", false
	}
	return idx.lookup(candidate)
}
