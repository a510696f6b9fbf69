package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/code-atlas/internal/config"
	"github.com/mvp-joe/code-atlas/internal/graph"
	"github.com/mvp-joe/code-atlas/internal/scan"
)

var (
	graphJSONFlag  bool
	graphUnitsFlag bool
)

// graphCmd reads the stored code-graph artifact from the last generation.
var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Show the dependency graph from the last scan",
	Long: `Graph prints the stored dependency graph of the most recent generation:
unit order (leaf dependencies first), mandatory joint clusters, the
critical path, and unresolved external imports.

Run 'atlas scan' first to produce the artifact.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().BoolVar(&graphJSONFlag, "json", false, "Print the raw artifact JSON")
	graphCmd.Flags().BoolVar(&graphUnitsFlag, "units", false, "Print only the topological unit order")
}

func runGraph(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	storage, err := scan.NewStorage(filepath.Join(root, cfg.Output.Dir))
	if err != nil {
		return err
	}
	raw, meta, err := storage.ReadRaw(scan.GraphFileName)
	if err != nil {
		return fmt.Errorf("no graph artifact found, run 'atlas scan' first: %w", err)
	}
	if graphJSONFlag {
		fmt.Println(string(raw))
		return nil
	}

	var g graph.CodeGraph
	if err := json.Unmarshal(raw, &g); err != nil {
		return fmt.Errorf("parse graph artifact: %w", err)
	}

	fmt.Printf("Generation %s (%s)\n", meta.Generation, meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("%d nodes, %d edges, %d units, %d unresolved imports\n\n",
		len(g.Nodes), len(g.Edges), len(g.Units), g.Unresolved)

	fmt.Println("Unit order (leaf dependencies first):")
	for i, u := range g.Units {
		if u.Cluster() {
			fmt.Printf("  %3d. [cluster] %s\n", i+1, strings.Join(u.Members, ", "))
		} else {
			fmt.Printf("  %3d. %s\n", i+1, u.ID)
		}
	}
	if graphUnitsFlag {
		return nil
	}

	if len(g.CriticalPath) > 0 {
		fmt.Printf("\nCritical path (%d units):\n", len(g.CriticalPath))
		for _, id := range g.CriticalPath {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
