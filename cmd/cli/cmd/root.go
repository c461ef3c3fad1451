// Package cmd implements the hyperpart command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpart/pkg/utils"
)

var (
	verbose    bool
	configPath string
	logger     utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "hyperpart",
	Short: "A parallel hypergraph coarsening tool",
	Long: `hyperpart coarsens large hypergraphs by community-parallel contraction.

The hypergraph is decomposed into community-induced section subhypergraphs,
each coarsened independently on a worker pool, and the results are merged
back into the original hypergraph with the incidence ordering required for
later uncontraction.

Inputs are hMETIS .hgr files; community assignments come from a label file
or a round-robin fallback.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := utils.LevelInfo
		if verbose {
			level = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(level, os.Stdout)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
}
