package coarsening

import (
	"context"
	"fmt"

	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/parallel"
)

// Histories shorter than this are indexed on the calling goroutine; the
// cutoff is a load-balancing choice, not a correctness requirement.
const serialIndexThreshold = 4096

// buildContractionIndex maps every contracted hypernode to its position in
// the global contraction history. Hypernodes that were never contracted
// keep index -1.
//
// Each hypernode appears in the history at most once, so parallel workers
// filling disjoint history slices write to disjoint index entries.
func buildContractionIndex(ctx context.Context, cfg parallel.PoolConfig, history []hypergraph.Memento, numNodes int) []int {
	index := make([]int, numNodes)
	for i := range index {
		index[i] = -1
	}

	fill := func(start, end int) {
		for i := start; i < end; i++ {
			v := history[i].V
			if index[v] != -1 {
				panic(fmt.Sprintf("coarsening: hypernode %d contracted twice (history positions %d and %d)",
					v, index[v], i))
			}
			index[v] = i
		}
	}

	if len(history) < serialIndexThreshold {
		fill(0, len(history))
	} else {
		parallel.ForRange(ctx, cfg, len(history), fill)
	}

	return index
}
