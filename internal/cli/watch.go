package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/code-atlas/internal/watch"
)

// watchCmd runs a scan, then re-runs one on every debounced change burst.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Continuously re-scan on file changes",
	Long: `Watch runs an initial scan, then monitors the tree and re-runs a full
generation after each debounced burst of file changes. Every generation
rewrites the artifacts and appends to the ledger, so work items issued
against outdated content get marked stale automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping watcher...")
		cancel()
	}()

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	trigger := func(ctx context.Context) error {
		res, _, err := runGeneration(ctx, root)
		if err != nil {
			// A broken generation should not kill the watcher; the next
			// change gets another chance.
			log.Printf("scan failed: %v", err)
			return nil
		}
		printSummary(res)
		return nil
	}

	if err := trigger(ctx); err != nil {
		return err
	}

	log.Printf("Watching %s for changes", root)
	return watch.New(root, trigger).Start(ctx)
}
