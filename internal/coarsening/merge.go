package coarsening

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/collections"
	"github.com/hyperpart/pkg/parallel"
)

// Merge writes the coarsened community subhypergraphs back into the parent
// hypergraph and restores the incidence-array ordering invariant that later
// uncontraction depends on.
//
// history is the global contraction history: the concatenation of all
// community histories translated to parent ids; a memento's position is its
// contraction index.
//
// The merge runs a serial pre-phase followed by three parallel phases, each
// separated by a pool barrier. Invariant violations panic: they indicate a
// bug in extraction or in the community coarsener, not a recoverable
// condition.
func Merge(ctx context.Context, cfg parallel.PoolConfig, h *hypergraph.Hypergraph, subs []*Subhypergraph, history []hypergraph.Memento) {
	// Pre-phase: reconcile aggregate counters and hyperedge weights
	// serially. Weights take the maximum across communities here so that
	// Phase 1 carries no read-compare-write race.
	for _, s := range subs {
		if s.Hg.InitialNumNodes() == 0 {
			continue
		}
		h.AdjustCurrentCounts(
			s.Hg.CurrentNumNodes()-s.Hg.InitialNumNodes(),
			s.Hg.CurrentNumEdges()-s.Hg.InitialNumEdges(),
			s.Hg.CurrentNumPins()-s.InitialNumPins,
		)
		for local, che := range s.LocalToGlobalEdge {
			if w := s.Hg.EdgeWeight(local); w > h.EdgeWeight(che.OriginalHE) {
				h.SetEdgeWeight(che.OriginalHE, w)
			}
		}
	}

	// Phase 1: each community writes its pins into the reserved windows.
	// Windows of different communities are disjoint by construction, and a
	// hypernode record is written only by its own community's worker.
	parallel.ForEach(ctx, subs, cfg, func(ctx context.Context, s *Subhypergraph) error {
		writeCommunityResults(h, s)
		return nil
	})

	// Phase 2: contraction indices from the global history.
	index := buildContractionIndex(ctx, cfg, history, h.InitialNumNodes())

	// Phase 3: per-hyperedge incidence normalization.
	parallel.ForRange(ctx, cfg, h.InitialNumEdges(), func(start, end int) {
		for e := start; e < end; e++ {
			normalizeHyperedge(h, e, index)
		}
	})
}

// writeCommunityResults replays one community's coarsened state onto the
// parent: community pins into the reserved windows, hypernode records of
// community members, and disabled flags of hyperedges the community
// coarsener removed.
func writeCommunityResults(h *hypergraph.Hypergraph, s *Subhypergraph) {
	child := s.Hg
	if child.InitialNumNodes() == 0 {
		return
	}

	visited := collections.NewBitset(len(s.LocalToGlobalEdge))
	incidence := h.Incidence()

	for hn := 0; hn < child.InitialNumNodes(); hn++ {
		if child.CommunityID(hn) != s.Community {
			continue
		}
		originalHN := s.LocalToGlobalNode[hn]

		nets := make([]int, 0, len(child.IncidentEdges(hn)))
		for _, he := range child.IncidentEdges(hn) {
			che := s.LocalToGlobalEdge[he]
			nets = append(nets, che.OriginalHE)
			if visited.Test(he) {
				continue
			}

			// The full child slot is replayed, disabled pins included:
			// the parent slot must stay a permutation of the original
			// pins for uncontraction.
			cursor := h.FirstEntry(che.OriginalHE) + che.Start
			for _, pin := range child.SlotPins(he) {
				if child.CommunityID(pin) == s.Community {
					incidence[cursor] = s.LocalToGlobalNode[pin]
					cursor++
				}
			}
			if cursor != h.FirstEntry(che.OriginalHE)+che.End {
				panic(fmt.Sprintf("coarsening: write cursor %d does not match window end %d of hyperedge %d",
					cursor, h.FirstEntry(che.OriginalHE)+che.End, che.OriginalHE))
			}

			// A hyperedge is disabled inside at most one community, so
			// this write cannot conflict with another worker.
			if !child.EdgeIsEnabled(he) {
				h.DisableEdge(che.OriginalHE)
			}
			visited.Set(he)
		}

		h.SetNodeWeight(originalHN, child.NodeWeight(hn))
		if child.NodeIsEnabled(hn) {
			h.EnableNode(originalHN)
		} else {
			h.DisableNode(originalHN)
		}
		h.SetIncidentEdges(originalHN, nets)
	}
}

// normalizeHyperedge compacts enabled pins into the slot prefix, recomputes
// the hyperedge hash over them, and sorts the disabled suffix by strictly
// decreasing contraction index.
func normalizeHyperedge(h *hypergraph.Hypergraph, e int, contractionIndex []int) {
	// A disabled hyperedge is scanned with its flags temporarily restored
	// so FirstInvalidEntry reports the correct split point.
	wasDisabled := !h.EdgeIsEnabled(e)
	if wasDisabled {
		h.EnableEdge(e)
	}

	h.ResetEdgeHash(e)
	incidence := h.Incidence()

	j := h.FirstEntry(e)
	for j < h.FirstInvalidEntry(e) {
		p := incidence[j]
		if !h.NodeIsEnabled(p) {
			last := h.FirstInvalidEntry(e) - 1
			incidence[j] = incidence[last]
			incidence[last] = p
			h.DecrementEdgeSize(e)
			// Reprocess position j: the swapped-in pin is unclassified.
		} else {
			h.SetEdgeHash(e, h.EdgeHash(e)+hypergraph.HashNode(p))
			j++
		}
	}

	suffix := incidence[h.FirstInvalidEntry(e):h.FirstEntry(e+1)]
	sort.Slice(suffix, func(a, b int) bool {
		return contractionIndex[suffix[a]] > contractionIndex[suffix[b]]
	})
	for _, p := range suffix {
		if contractionIndex[p] < 0 {
			panic(fmt.Sprintf("coarsening: disabled pin %d of hyperedge %d was never contracted", p, e))
		}
	}

	if wasDisabled {
		h.DisableEdge(e)
	}
}
