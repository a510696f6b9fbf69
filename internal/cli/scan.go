package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/code-atlas/internal/config"
	"github.com/mvp-joe/code-atlas/internal/lang"
	"github.com/mvp-joe/code-atlas/internal/scan"
)

var (
	quietFlag    bool
	workersFlag  int
	findingsFlag string
	excludeFlag  []string
	weightFlag   string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Run one full analysis generation over a source tree",
	Long: `Scan classifies every file, extracts imports, definitions and calls,
builds the dependency graph with topological unit order and critical path,
and (when findings are supplied) decomposes them into ordered work items.

Artifacts are written to .atlas/ inside the scanned root:
  records.json     per-file extraction records
  code-graph.json  nodes, edges, clusters, unit order, critical path
  call-graph.json  symbol-level call graph
  work-items.json  ordered remediation work items
  summary.json     languages, parse success rates, skip list

Examples:
  # Scan the current directory
  atlas scan

  # Scan a project with findings from an external rule catalog
  atlas scan ~/src/legacy --findings findings.json

  # Exclude generated trees
  atlas scan --exclude 'gen/**' --exclude 'third_party/**'
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
	scanCmd.Flags().IntVar(&workersFlag, "workers", 0, "Parallel extraction workers (0 = GOMAXPROCS)")
	scanCmd.Flags().StringVar(&findingsFlag, "findings", "", "Per-file findings JSON from an external rule catalog")
	scanCmd.Flags().StringArrayVar(&excludeFlag, "exclude", nil, "Additional exclusion globs")
	scanCmd.Flags().StringVar(&weightFlag, "weight", "", "Critical-path node weight: constant or lines")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling scan...")
		cancel()
	}()

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	res, cfg, err := runGeneration(ctx, root)
	if err != nil {
		return err
	}

	printSummary(res)
	if verbose {
		log.Printf("Artifacts written to %s", filepath.Join(root, cfg.Output.Dir))
	}
	return nil
}

// runGeneration runs one scan generation and persists its artifacts and
// ledger entry. Shared by scan and watch.
func runGeneration(ctx context.Context, root string) (*scan.Result, *config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	if workersFlag > 0 {
		cfg.Scan.Workers = workersFlag
	}
	if findingsFlag != "" {
		cfg.Findings.Path = findingsFlag
	}
	if weightFlag != "" {
		cfg.Scan.Weight = weightFlag
	}
	excludes := append(append([]string{}, cfg.Paths.Exclude...), excludeFlag...)

	res, err := scan.Run(ctx, scan.Options{
		Root:         root,
		Excludes:     excludes,
		Workers:      cfg.Scan.Workers,
		FindingsPath: cfg.Findings.Path,
		CallGraph:    cfg.Scan.CallGraph,
		Weight:       cfg.Scan.Weight,
		Progress:     NewCLIProgressReporter(quietFlag),
	})
	if err != nil {
		return nil, nil, err
	}

	storage, err := scan.NewStorage(filepath.Join(root, cfg.Output.Dir))
	if err != nil {
		return nil, nil, err
	}
	if err := storage.WriteArtifacts(res); err != nil {
		return nil, nil, fmt.Errorf("write artifacts: %w", err)
	}

	ledger, err := scan.OpenLedger(filepath.Join(root, cfg.Output.Ledger))
	if err != nil {
		return nil, nil, err
	}
	defer ledger.Close()
	if err := ledger.RecordGeneration(res); err != nil {
		return nil, nil, fmt.Errorf("record generation: %w", err)
	}

	return res, cfg, nil
}

func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func printSummary(res *scan.Result) {
	fmt.Printf("Generation %s\n", res.Generation)
	fmt.Printf("Processed %d files, skipped %d\n", res.Stats.Processed, len(res.Stats.Skipped))

	langs := make([]lang.Language, 0, len(res.Stats.ByLanguage))
	for l := range res.Stats.ByLanguage {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	for _, l := range langs {
		ls := res.Stats.ByLanguage[l]
		okFiles := ls.Files - ls.ParseFailures
		fmt.Printf("  %-12s %4d files, %d/%d parsed", l, ls.Files, okFiles, ls.Files)
		if ls.Degraded > 0 {
			fmt.Printf(" (%d degraded)", ls.Degraded)
		}
		fmt.Println()
	}
	for _, gap := range res.Stats.CapabilityGaps {
		fmt.Printf("  no grammar for %s (degraded extraction)\n", gap)
	}
	if verbose {
		for _, sk := range res.Stats.Skipped {
			fmt.Printf("  skipped %s: %s\n", sk.Path, sk.Reason)
		}
	}
	fmt.Printf("Graph: %d nodes, %d edges, %d units, %d unresolved imports\n",
		len(res.Graph.Nodes), len(res.Graph.Edges), len(res.Graph.Units), res.Graph.Unresolved)
	if len(res.Items) > 0 {
		fmt.Printf("Work items: %d\n", len(res.Items))
	}
	for _, p := range res.Stats.UnmatchedFindings {
		fmt.Printf("  findings for %s match no scanned file\n", p)
	}
}
