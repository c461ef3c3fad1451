package coarsening

import (
	"fmt"
	"sort"

	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/collections"
)

// inverseMapPool recycles the dense global-to-local scratch arrays; they are
// sized to the parent hypergraph and would otherwise be reallocated once per
// community.
var inverseMapPool = collections.NewIntSlicePool(1024)

// Subhypergraph is the community-induced section subhypergraph of one
// community: every hyperedge with at least one pin in the community, with
// all of its pins, renumbered to a dense local id space.
//
// It owns its child hypergraph; the parent is only borrowed during
// extraction and merge-back and is never mutated in between.
type Subhypergraph struct {
	// Community is the community this subhypergraph was extracted for.
	Community int

	// Hg is the owned child hypergraph holding the coarsened state.
	Hg *hypergraph.Hypergraph

	// LocalToGlobalNode maps local hypernode ids to parent ids.
	LocalToGlobalNode []int

	// LocalToGlobalEdge maps local hyperedge ids to parent hyperedges and
	// their reserved incidence windows, in local hyperedge order.
	LocalToGlobalEdge []CommunityHyperedge

	// NumNodesNotInCommunity counts local hypernodes outside the community.
	NumNodesNotInCommunity int

	// NumPinsNotInCommunity counts pin occurrences outside the community.
	NumPinsNotInCommunity int

	// InitialNumPins is the pin count of the child at extraction time.
	InitialNumPins int

	// History records the community's contractions in execution order,
	// in local ids.
	History []hypergraph.Memento
}

// InitialNumEdges returns the number of hyperedges extracted into the child.
func (s *Subhypergraph) InitialNumEdges() int {
	return len(s.LocalToGlobalEdge)
}

// Extract builds the community-induced section subhypergraph for the given
// community. When respectOrder is set, local hypernode ids are assigned in
// ascending parent-id order.
//
// The parent is read-only during extraction, so extractions for different
// communities may run concurrently.
func Extract(h *hypergraph.Hypergraph, community int, respectOrder bool) *Subhypergraph {
	numNodes := h.InitialNumNodes()
	numEdges := h.InitialNumEdges()

	// One bitset spans both domains: bit v marks hypernode v,
	// bit numNodes+e marks hyperedge e.
	visited := collections.NewBitset(numNodes + numEdges)

	s := &Subhypergraph{Community: community}

	// Pin collection pass.
	for _, v := range h.Nodes() {
		if h.CommunityID(v) != community {
			continue
		}
		for _, e := range h.IncidentEdges(v) {
			if !h.EdgeIsEnabled(e) || visited.Test(numNodes+e) {
				continue
			}
			for _, p := range h.Pins(e) {
				if !visited.Test(p) {
					visited.Set(p)
					s.LocalToGlobalNode = append(s.LocalToGlobalNode, p)
				}
				if h.CommunityID(p) != community {
					s.NumPinsNotInCommunity++
				}
			}
			visited.Set(numNodes + e)
		}
	}

	if respectOrder {
		sort.Ints(s.LocalToGlobalNode)
	}

	if len(s.LocalToGlobalNode) == 0 {
		// Empty community: empty child, merge-back becomes a no-op.
		s.Hg = hypergraph.Build(0, []int{0}, []int{}, nil, nil)
		return s
	}

	// Dense inverse map, recycled across concurrent extractions.
	scratch := inverseMapPool.Get()
	defer inverseMapPool.Put(scratch)
	if cap(*scratch) < numNodes {
		*scratch = make([]int, numNodes)
	} else {
		*scratch = (*scratch)[:numNodes]
	}
	globalToLocal := *scratch
	for i := range globalToLocal {
		globalToLocal[i] = -1
	}
	for local, g := range s.LocalToGlobalNode {
		globalToLocal[g] = local
	}

	// Hyperedge construction pass.
	offsets := make([]int, 1, 16)
	var incidence []int
	var edgeWeights []int64
	sizes := make(map[int]int)

	for e := 0; e < numEdges; e++ {
		if !visited.Test(numNodes + e) {
			continue
		}
		for c := range sizes {
			delete(sizes, c)
		}
		for _, p := range h.Pins(e) {
			local := globalToLocal[p]
			if local < 0 {
				panic(fmt.Sprintf("coarsening: pin %d of hyperedge %d has no local id", p, e))
			}
			incidence = append(incidence, local)
			sizes[h.CommunityID(p)]++
		}
		offsets = append(offsets, len(incidence))
		edgeWeights = append(edgeWeights, h.EdgeWeight(e))

		start, end := slotForCommunity(sizes, community)
		s.LocalToGlobalEdge = append(s.LocalToGlobalEdge, CommunityHyperedge{
			OriginalHE: e,
			Start:      start,
			End:        end,
		})
	}

	nodeWeights := make([]int64, len(s.LocalToGlobalNode))
	for local, g := range s.LocalToGlobalNode {
		nodeWeights[local] = h.NodeWeight(g)
		if h.CommunityID(g) != community {
			s.NumNodesNotInCommunity++
		}
	}

	s.InitialNumPins = len(incidence)
	s.Hg = hypergraph.Build(len(s.LocalToGlobalNode), offsets, incidence, edgeWeights, nodeWeights)
	for local, g := range s.LocalToGlobalNode {
		s.Hg.SetCommunityID(local, h.CommunityID(g))
	}

	return s
}
