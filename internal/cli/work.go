package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/code-atlas/internal/config"
	"github.com/mvp-joe/code-atlas/internal/scan"
	"github.com/mvp-joe/code-atlas/internal/work"
)

var (
	workJSONFlag  bool
	workStaleFlag bool
	workTierFlag  string
)

// workCmd reads the stored work-items artifact from the last generation.
var workCmd = &cobra.Command{
	Use:   "work [path]",
	Short: "List work items from the last scan",
	Long: `Work prints the ordered work items of the most recent generation.
Items appear in dependency order: items in leaf units come before items
in units that depend on them, and within a file items are grouped by
enclosing definition.

Run 'atlas scan --findings <file>' first to produce the artifact.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWork,
}

func init() {
	rootCmd.AddCommand(workCmd)
	workCmd.Flags().BoolVar(&workJSONFlag, "json", false, "Print the raw artifact JSON")
	workCmd.Flags().BoolVar(&workStaleFlag, "stale", false, "List work item ids invalidated by later generations")
	workCmd.Flags().StringVar(&workTierFlag, "tier", "", "Only show items of one tier (simple, moderate, complex)")
}

func runWork(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	if workStaleFlag {
		return printStale(filepath.Join(root, cfg.Output.Ledger))
	}

	storage, err := scan.NewStorage(filepath.Join(root, cfg.Output.Dir))
	if err != nil {
		return err
	}
	raw, meta, err := storage.ReadRaw(scan.WorkItemsFileName)
	if err != nil {
		return fmt.Errorf("no work-items artifact found, run 'atlas scan' first: %w", err)
	}
	if workJSONFlag {
		fmt.Println(string(raw))
		return nil
	}

	var items []work.WorkItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("parse work-items artifact: %w", err)
	}

	fmt.Printf("Generation %s: %d work items\n\n", meta.Generation, len(items))
	for _, item := range items {
		if workTierFlag != "" && string(item.Tier) != workTierFlag {
			continue
		}
		loc := fmt.Sprintf("%s:%d", item.File, item.StartLine)
		fmt.Printf("%s  %-8s %-8s %s\n", item.ID, item.Tier, item.Risk, loc)
		fmt.Printf("                  %s: %s\n", item.Pattern, item.Message)
		if item.Enclosing != "" && verbose {
			fmt.Printf("                  in %s\n", item.Enclosing)
		}
	}
	return nil
}

func printStale(ledgerPath string) error {
	ledger, err := scan.OpenLedger(ledgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	ids, err := ledger.StaleItems()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No stale work items")
		return nil
	}
	fmt.Printf("%d stale work items (file content changed since issuance):\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
