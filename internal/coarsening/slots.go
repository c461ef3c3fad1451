// Package coarsening implements community-parallel hypergraph coarsening:
// extraction of community-induced section subhypergraphs, independent
// contraction inside each community, and the three-phase merge that writes
// the results back into the shared incidence array.
package coarsening

import "fmt"

// CommunityHyperedge links a hyperedge of a community subhypergraph to its
// hyperedge in the parent, together with the community's reserved window
// [Start, End) inside the parent slot, relative to FirstEntry(OriginalHE).
//
// Windows of different communities on the same hyperedge are disjoint and
// their union covers the enabled prefix, so merge-back can write them
// concurrently without locks.
type CommunityHyperedge struct {
	OriginalHE int
	Start      int
	End        int
}

// slotForCommunity computes the reserved window for a community inside one
// hyperedge slot. sizes maps community id to the number of pins that
// community contributes to the hyperedge. Communities are laid out in
// ascending id order, so the window starts at the pin count of all smaller
// communities.
//
// A community absent from sizes indicates a bookkeeping bug in the caller.
func slotForCommunity(sizes map[int]int, community int) (start, end int) {
	width, ok := sizes[community]
	if !ok {
		panic(fmt.Sprintf("coarsening: community %d missing from pin-count map", community))
	}
	for c, n := range sizes {
		if c < community {
			start += n
		}
	}
	return start, start + width
}
