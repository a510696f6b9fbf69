package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

// Build metadata, overridden via ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - universal code graph engine",
	Long: `Atlas analyzes a multi-language source tree and produces a unified
dependency graph plus an ordered list of remediation work items.

It classifies languages, extracts imports, definitions and calls through
tree-sitter query bundles, resolves the dependency graph with cycle-safe
topological ordering, and decomposes external findings into atomic,
independently executable work items.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("atlas {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))
}
