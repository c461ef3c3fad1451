package coarsening

import "github.com/hyperpart/internal/hypergraph"

// CoarsenCommunity contracts hypernode pairs inside one community
// subhypergraph until the number of enabled community members drops to
// nodeLimit or no contractible pair remains.
//
// Pairs are rated heavy-edge style: rating(u, v) is the sum of
// w(e) / (|e| - 1) over the enabled hyperedges containing both. Only pairs
// inside the community are contracted; external pins are never touched, so
// merge-back can rely on every contracted hypernode being community-owned.
//
// Hyperedges that shrink to a single pin are disabled.
func CoarsenCommunity(s *Subhypergraph, nodeLimit int) {
	child := s.Hg
	if nodeLimit < 1 {
		nodeLimit = 1
	}

	members := 0
	for v := 0; v < child.InitialNumNodes(); v++ {
		if child.NodeIsEnabled(v) && child.CommunityID(v) == s.Community {
			members++
		}
	}

	for members > nodeLimit {
		progress := false
		for u := 0; u < child.InitialNumNodes() && members > nodeLimit; u++ {
			if !child.NodeIsEnabled(u) || child.CommunityID(u) != s.Community {
				continue
			}
			v := bestRatedPartner(child, u, s.Community)
			if v < 0 {
				continue
			}

			s.History = append(s.History, child.Contract(u, v))
			members--
			progress = true

			for _, e := range child.IncidentEdges(u) {
				if child.EdgeIsEnabled(e) && child.EdgeSize(e) == 1 {
					child.DisableEdge(e)
					child.AdjustCurrentCounts(0, -1, 0)
				}
			}
		}
		if !progress {
			break
		}
	}
}

// bestRatedPartner returns the community neighbor of u with the highest
// heavy-edge rating, or -1 if u has none. Ties break toward the smaller id
// to keep contraction order deterministic.
func bestRatedPartner(h *hypergraph.Hypergraph, u int, community int) int {
	ratings := make(map[int]float64)

	for _, e := range h.IncidentEdges(u) {
		if !h.EdgeIsEnabled(e) {
			continue
		}
		size := h.EdgeSize(e)
		if size < 2 {
			continue
		}
		score := float64(h.EdgeWeight(e)) / float64(size-1)
		for _, p := range h.Pins(e) {
			if p == u || !h.NodeIsEnabled(p) || h.CommunityID(p) != community {
				continue
			}
			ratings[p] += score
		}
	}

	best := -1
	var bestScore float64
	for p, score := range ratings {
		if best < 0 || score > bestScore || (score == bestScore && p < best) {
			best = p
			bestScore = score
		}
	}
	return best
}
