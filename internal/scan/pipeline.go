package scan

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/code-atlas/internal/extract"
	"github.com/mvp-joe/code-atlas/internal/grammar"
	"github.com/mvp-joe/code-atlas/internal/graph"
	"github.com/mvp-joe/code-atlas/internal/lang"
	"github.com/mvp-joe/code-atlas/internal/work"
)

// Run executes one full generation: classify, preload grammars, extract
// every file in parallel, then build the graph and decompose work items.
//
// Graph construction is a hard synchronization barrier: it observes the
// complete record set or nothing. Cancellation is safe any time before the
// barrier; in-flight records are simply discarded.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	scanner, err := lang.NewScanner(opts.Root, opts.Excludes)
	if err != nil {
		return nil, fmt.Errorf("compile exclusion globs: %w", err)
	}
	manifest, err := scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.Root, err)
	}

	reg, err := grammar.NewRegistry()
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	gaps := reg.Preload(manifest.Languages())
	for _, l := range gaps {
		log.Printf("no grammar for %s: falling back to degraded extraction", l)
	}

	res := &Result{
		Generation: uuid.NewString(),
		Root:       opts.Root,
		Hashes:     make(map[string]string),
		Stats: Stats{
			ByLanguage:     make(map[lang.Language]*LangStats),
			CapabilityGaps: gaps,
		},
	}
	for _, p := range manifest.SkipPaths {
		res.Stats.Skipped = append(res.Stats.Skipped, SkippedFile{Path: p, Reason: "unrecognized or binary"})
	}

	if opts.Progress != nil {
		opts.Progress.OnScanStart(len(manifest.Files))
	}

	// Per-file extraction is embarrassingly parallel once grammars are
	// preloaded: no shared mutable state between files. Each worker writes
	// only its own slot and reports progress as it finishes.
	engine := extract.NewEngine(reg)
	type slot struct {
		rec  *extract.Record
		skip *SkippedFile
	}
	slots := make([]slot, len(manifest.Files))

	var finished atomic.Int64
	report := func(file string) {
		if opts.Progress != nil {
			opts.Progress.OnFileProcessed(int(finished.Add(1)), len(manifest.Files), file)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, entry := range manifest.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(entry.Path)
			if err != nil {
				slots[i].skip = &SkippedFile{Path: entry.RelPath, Reason: err.Error()}
				report(entry.RelPath)
				return nil // a single unreadable file never aborts the scan
			}
			rec, err := engine.Extract(gctx, entry.RelPath, src, entry.Language)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				slots[i].skip = &SkippedFile{Path: entry.RelPath, Reason: err.Error()}
				report(entry.RelPath)
				return nil
			}
			slots[i].rec = rec
			report(entry.RelPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Barrier passed: the record set is complete.
	processed := 0
	for _, s := range slots {
		if s.skip != nil {
			res.Stats.Skipped = append(res.Stats.Skipped, *s.skip)
			continue
		}
		if s.rec == nil {
			continue
		}
		processed++
		res.Records = append(res.Records, s.rec)
		res.Hashes[s.rec.File] = s.rec.ContentHash
		ls := res.Stats.ByLanguage[s.rec.Language]
		if ls == nil {
			ls = &LangStats{}
			res.Stats.ByLanguage[s.rec.Language] = ls
		}
		ls.Files++
		if !s.rec.ParseSuccess {
			ls.ParseFailures++
		}
		if s.rec.Degraded {
			ls.Degraded++
		}
	}
	res.Stats.Processed = processed

	graphStart := time.Now()
	res.Graph, err = graph.Build(res.Records, buildOptions(opts, res.Records)...)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	if opts.CallGraph {
		res.CallGraph = graph.BuildCallGraph(res.Records)
	}
	if opts.Progress != nil {
		opts.Progress.OnGraphComplete(len(res.Graph.Nodes), len(res.Graph.Edges), time.Since(graphStart))
	}

	// Decomposition depends on the finalized unit order; it starts only now.
	if opts.FindingsPath != "" {
		findings, err := LoadFindings(opts.FindingsPath)
		if err != nil {
			return nil, fmt.Errorf("load findings: %w", err)
		}
		var unmatched []string
		res.Items, unmatched, err = work.NewDecomposer(opts.Root).Decompose(res.Graph, res.Records, findings)
		if err != nil {
			return nil, fmt.Errorf("decompose: %w", err)
		}
		for _, p := range unmatched {
			log.Printf("findings for %s match no scanned file", p)
		}
		res.Stats.UnmatchedFindings = unmatched
	}

	res.Stats.Duration = time.Since(start)
	return res, nil
}

// buildOptions translates generation options into builder options. Line
// weighting reuses the metrics already extracted, so a 2000-line file
// counts for more of the critical path than a 10-line one.
func buildOptions(opts Options, records []*extract.Record) []graph.BuilderOption {
	if opts.Weight != WeightLines {
		return nil
	}
	lines := make(map[string]int, len(records))
	for _, r := range records {
		lines[r.File] = r.Metrics.Lines
	}
	return []graph.BuilderOption{graph.WithNodeWeight(func(file string) int {
		if n := lines[file]; n > 0 {
			return n
		}
		return 1
	})}
}
