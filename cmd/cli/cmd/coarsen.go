package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperpart/internal/coarsening"
	"github.com/hyperpart/internal/community"
	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/model"
	"github.com/hyperpart/pkg/parallel"
	"github.com/hyperpart/pkg/utils"
	"github.com/hyperpart/pkg/writer"
)

var (
	communityFile  string
	numCommunities int
	workers        int
	nodeLimit      int
	respectOrder   bool
	outputPath     string
)

var coarsenCmd = &cobra.Command{
	Use:   "coarsen <input.hgr>",
	Short: "Coarsen a hypergraph from an hMETIS file",
	Long: `Coarsen reads an hMETIS hypergraph, decomposes it into community-induced
subhypergraphs, contracts each community in parallel, and merges the result
back. A JSON report is printed or written to --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCoarsen(cmd.Context(), args[0])
	},
}

func init() {
	coarsenCmd.Flags().StringVar(&communityFile, "communities", "", "community assignment file (one label per hypernode)")
	coarsenCmd.Flags().IntVar(&numCommunities, "num-communities", 4, "round-robin community count when no assignment file is given")
	coarsenCmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = auto)")
	coarsenCmd.Flags().IntVar(&nodeLimit, "node-limit", 2, "enabled community members to keep per community")
	coarsenCmd.Flags().BoolVar(&respectOrder, "respect-order", true, "renumber local hypernodes in ascending global order")
	coarsenCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the JSON report to this file instead of stdout")

	rootCmd.AddCommand(coarsenCmd)
}

func runCoarsen(ctx context.Context, inputPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	timer := utils.NewTimer("coarsen")

	var h *hypergraph.Hypergraph
	_, err := timer.TimeFuncWithError("load", func() error {
		var err error
		h, err = hypergraph.ParseFile(inputPath)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("Loaded %s: %d hypernodes, %d hyperedges, %d pins",
		inputPath, h.InitialNumNodes(), h.InitialNumEdges(), h.CurrentNumPins())

	var labels []int
	if communityFile != "" {
		labels, err = community.LoadFile(communityFile, h.InitialNumNodes())
		if err != nil {
			return err
		}
	} else {
		logger.Info("No community file given, assigning %d round-robin communities", numCommunities)
		labels = community.RoundRobin(h.InitialNumNodes(), numCommunities)
	}
	h.SetCommunities(labels)

	stats := model.RunStats{
		InitialNodes:   h.InitialNumNodes(),
		InitialEdges:   h.InitialNumEdges(),
		InitialPins:    h.CurrentNumPins(),
		NumCommunities: community.Count(labels),
	}

	var result *coarsening.Result
	_, err = timer.TimeFuncWithError("coarsen", func() error {
		opts := coarsening.Options{
			Pool:               parallel.DefaultPoolConfig().WithWorkers(workers),
			RespectNodeOrder:   respectOrder,
			CommunityNodeLimit: nodeLimit,
		}
		var err error
		result, err = coarsening.Coarsen(ctx, h, opts)
		return err
	})
	if err != nil {
		return err
	}

	stats.CoarseNodes = h.CurrentNumNodes()
	stats.CoarseEdges = h.CurrentNumEdges()
	stats.CoarsePins = h.CurrentNumPins()
	stats.Contractions = len(result.History)

	logger.Info("Coarsened to %d hypernodes (%.1f%% reduction) with %d contractions",
		stats.CoarseNodes, stats.ReductionRatio()*100, stats.Contractions)

	report := &model.Report{
		RunUUID:  strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		InputKey: inputPath,
		Stats:    stats,
	}
	for _, p := range timer.GetPhases() {
		report.Timings = append(report.Timings, model.NewPhaseTiming(p.Name, p.Duration))
	}

	if outputPath == "" {
		return writer.WriteJSONTo(os.Stdout, report)
	}
	if err := writer.WriteJSONFile(outputPath, report); err != nil {
		return err
	}
	logger.Info("Report written to %s", outputPath)
	return nil
}
