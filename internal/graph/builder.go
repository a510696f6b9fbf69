package graph

import (
	"errors"
	"fmt"
	"sort"

	dgraph "github.com/dominikbraun/graph"

	"github.com/mvp-joe/code-atlas/internal/extract"
)

// Builder turns a complete generation of extraction records into a
// CodeGraph. Construction never fails on bad input data; the worst case is
// more external or unresolved edges than expected.
type Builder struct {
	resolver   *Resolver
	nodeWeight func(file string) int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNodeWeight overrides the per-node weight used for the critical path.
// The default weighs every node as one step.
func WithNodeWeight(weight func(file string) int) BuilderOption {
	return func(b *Builder) {
		b.nodeWeight = weight
	}
}

// WithStrategies appends extra resolution strategies to the default chain.
func WithStrategies(extra ...Strategy) BuilderOption {
	return func(b *Builder) {
		b.resolver.strategies = append(b.resolver.strategies, extra...)
	}
}

// Build is the single-call form of NewBuilder().Build().
func Build(records []*extract.Record, opts ...BuilderOption) (*CodeGraph, error) {
	return NewBuilder(records, opts...).Build(records)
}

// NewBuilder creates a builder whose resolver is indexed over the given
// records.
func NewBuilder(records []*extract.Record, opts ...BuilderOption) *Builder {
	b := &Builder{
		resolver:   NewResolver(records),
		nodeWeight: func(string) int { return 1 },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs resolution, SCC clustering, condensation orderings and the
// critical path. It must observe the complete record set for a generation;
// there is no partial or streaming build.
func (b *Builder) Build(records []*extract.Record) (*CodeGraph, error) {
	sorted := make([]*extract.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	g := &CodeGraph{}
	internal := make(map[string]bool, len(sorted))
	for _, r := range sorted {
		g.Nodes = append(g.Nodes, Node{ID: r.File, Kind: NodeFile, Language: r.Language})
		internal[r.File] = true
	}

	// Resolution pass. Every import yields exactly one edge: internal when a
	// strategy claims it, an external placeholder otherwise.
	externals := make(map[string]bool)
	for _, r := range sorted {
		for i := range r.Imports {
			imp := &r.Imports[i]
			target, ext := b.resolver.Resolve(r.File, imp.Raw)
			imp.Resolved = target
			if ext {
				g.Unresolved++
				if !externals[target] {
					externals[target] = true
					g.Nodes = append(g.Nodes, Node{ID: target, Kind: NodeExternal})
				}
			}
			g.Edges = append(g.Edges, Edge{From: r.File, To: target, Kind: EdgeImport, Line: imp.Line})
		}
	}

	if err := b.deriveOrder(g, internal); err != nil {
		return nil, err
	}
	return g, nil
}

// deriveOrder computes the SCC partition, condensation, topological unit
// order and critical path over the internal-edge subgraph.
func (b *Builder) deriveOrder(g *CodeGraph, internal map[string]bool) error {
	ig := dgraph.New(dgraph.StringHash, dgraph.Directed())
	for id := range internal {
		_ = ig.AddVertex(id)
	}
	for _, e := range g.Edges {
		if !internal[e.From] || !internal[e.To] || e.From == e.To {
			continue
		}
		if err := ig.AddEdge(e.From, e.To); err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
			return fmt.Errorf("add edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	sccs, err := dgraph.StronglyConnectedComponents(ig)
	if err != nil {
		return fmt.Errorf("compute strongly connected components: %w", err)
	}

	// Cluster id is the lexicographically smallest member, which keeps unit
	// identity stable across runs.
	clusterOf := make(map[string]string)
	members := make(map[string][]string)
	for _, scc := range sccs {
		sort.Strings(scc)
		id := scc[0]
		members[id] = scc
		for _, m := range scc {
			clusterOf[m] = id
		}
	}

	// Condensation, with edges reversed so the topological order emits leaf
	// dependencies first. Collapsing SCCs guarantees acyclicity.
	cond := dgraph.New(dgraph.StringHash, dgraph.Directed())
	for id := range members {
		_ = cond.AddVertex(id)
	}
	for _, e := range g.Edges {
		if !internal[e.From] || !internal[e.To] {
			continue
		}
		cf, ct := clusterOf[e.From], clusterOf[e.To]
		if cf == ct {
			continue
		}
		if err := cond.AddEdge(ct, cf); err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
			return fmt.Errorf("add condensation edge: %w", err)
		}
	}

	order, err := dgraph.StableTopologicalSort(cond, func(a, b string) bool { return a < b })
	if err != nil {
		return fmt.Errorf("topological sort of condensation: %w", err)
	}

	for _, id := range order {
		g.Units = append(g.Units, Unit{ID: id, Members: members[id]})
		g.SCCs = append(g.SCCs, members[id])
	}

	g.CriticalPath, err = b.criticalPath(cond, order, members)
	return err
}

// criticalPath finds the longest weighted path through the condensation by
// dynamic programming over the topological order.
func (b *Builder) criticalPath(cond dgraph.Graph[string, string], order []string, members map[string][]string) ([]string, error) {
	adj, err := cond.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("adjacency map: %w", err)
	}

	weight := func(id string) int {
		total := 0
		for _, m := range members[id] {
			total += b.nodeWeight(m)
		}
		return total
	}

	dist := make(map[string]int, len(order))
	pred := make(map[string]string, len(order))
	for _, u := range order {
		if _, ok := dist[u]; !ok {
			dist[u] = weight(u)
		}
		// Deterministic successor order.
		succs := make([]string, 0, len(adj[u]))
		for v := range adj[u] {
			succs = append(succs, v)
		}
		sort.Strings(succs)
		for _, v := range succs {
			if _, ok := dist[v]; !ok {
				dist[v] = weight(v)
			}
			if dist[u]+weight(v) > dist[v] {
				dist[v] = dist[u] + weight(v)
				pred[v] = u
			}
		}
	}

	end := ""
	for _, u := range order {
		if end == "" || dist[u] > dist[end] || (dist[u] == dist[end] && u < end) {
			end = u
		}
	}
	if end == "" {
		return nil, nil
	}

	var rev []string
	for at := end; ; {
		rev = append(rev, at)
		prev, ok := pred[at]
		if !ok {
			break
		}
		at = prev
	}
	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path, nil
}
