// Package hypergraph implements the static hypergraph container used by the
// coarsening pipeline.
//
// Pins are stored in a single flat incidence array. Each hyperedge owns the
// contiguous slot [FirstEntry(e), FirstEntry(e+1)); the prefix up to
// FirstInvalidEntry(e) lists currently enabled pins, the remaining suffix
// holds pins disabled by contractions. Community-parallel coarsening depends
// on this layout: reserved sub-windows of a slot can be written concurrently
// without locks, and the disabled suffix keeps the information uncontraction
// needs.
package hypergraph

import "fmt"

// EdgeHashSeed is the initial value of every hyperedge hash.
const EdgeHashSeed uint64 = 42

// Memento records a single contraction: V was merged into representative U.
// The position of a memento in the global history is its contraction index.
type Memento struct {
	U int
	V int
}

// Hypergraph is a static hypergraph with flat incidence storage.
type Hypergraph struct {
	numNodes int
	numEdges int

	incidence   []int
	edgeOffsets []int // len numEdges+1, edgeOffsets[numEdges] = len(incidence)
	edgeSizes   []int // enabled pin count per hyperedge
	edgeWeights []int64
	edgeEnabled []bool
	edgeHashes  []uint64

	nodeWeights   []int64
	nodeEnabled   []bool
	communities   []int
	incidentEdges [][]int

	currentNumNodes int
	currentNumEdges int
	currentNumPins  int
}

// ============================================================================
// Construction
// ============================================================================

// Build constructs a hypergraph from raw flat arrays and finalizes the
// internal structures (incident-net lists, sizes, counts, hashes).
//
// edgeOffsets must have numEdges+1 monotone entries with the last equal to
// len(incidence). Nil weight slices default to unit weights. Structural
// violations panic: they indicate a bug in the caller, not bad user input.
func Build(numNodes int, edgeOffsets []int, incidence []int, edgeWeights []int64, nodeWeights []int64) *Hypergraph {
	numEdges := len(edgeOffsets) - 1
	if numEdges < 0 {
		panic("hypergraph: edgeOffsets must contain at least one entry")
	}
	if edgeOffsets[numEdges] != len(incidence) {
		panic(fmt.Sprintf("hypergraph: offset table ends at %d, incidence has %d entries",
			edgeOffsets[numEdges], len(incidence)))
	}

	h := &Hypergraph{
		numNodes:    numNodes,
		numEdges:    numEdges,
		incidence:   incidence,
		edgeOffsets: edgeOffsets,
		edgeSizes:   make([]int, numEdges),
		edgeWeights: edgeWeights,
		edgeEnabled: make([]bool, numEdges),
		edgeHashes:  make([]uint64, numEdges),

		nodeWeights:   nodeWeights,
		nodeEnabled:   make([]bool, numNodes),
		communities:   make([]int, numNodes),
		incidentEdges: make([][]int, numNodes),

		currentNumNodes: numNodes,
		currentNumEdges: numEdges,
		currentNumPins:  len(incidence),
	}

	if h.edgeWeights == nil {
		h.edgeWeights = make([]int64, numEdges)
		for e := range h.edgeWeights {
			h.edgeWeights[e] = 1
		}
	}
	if h.nodeWeights == nil {
		h.nodeWeights = make([]int64, numNodes)
		for v := range h.nodeWeights {
			h.nodeWeights[v] = 1
		}
	}

	for v := 0; v < numNodes; v++ {
		h.nodeEnabled[v] = true
	}

	for e := 0; e < numEdges; e++ {
		if edgeOffsets[e] > edgeOffsets[e+1] {
			panic(fmt.Sprintf("hypergraph: offsets of hyperedge %d are not monotone", e))
		}
		h.edgeSizes[e] = edgeOffsets[e+1] - edgeOffsets[e]
		h.edgeEnabled[e] = true
		h.edgeHashes[e] = EdgeHashSeed
		for j := edgeOffsets[e]; j < edgeOffsets[e+1]; j++ {
			p := incidence[j]
			if p < 0 || p >= numNodes {
				panic(fmt.Sprintf("hypergraph: pin %d of hyperedge %d out of range", p, e))
			}
			h.incidentEdges[p] = append(h.incidentEdges[p], e)
			h.edgeHashes[e] += HashNode(p)
		}
	}

	return h
}

// New constructs a hypergraph from per-hyperedge pin lists.
func New(numNodes int, pins [][]int, edgeWeights []int64, nodeWeights []int64) *Hypergraph {
	offsets := make([]int, len(pins)+1)
	total := 0
	for e, ps := range pins {
		offsets[e] = total
		total += len(ps)
	}
	offsets[len(pins)] = total

	incidence := make([]int, 0, total)
	for _, ps := range pins {
		incidence = append(incidence, ps...)
	}

	return Build(numNodes, offsets, incidence, edgeWeights, nodeWeights)
}

// ============================================================================
// Sizes and counters
// ============================================================================

// InitialNumNodes returns the number of hypernodes the hypergraph was built with.
func (h *Hypergraph) InitialNumNodes() int { return h.numNodes }

// InitialNumEdges returns the number of hyperedges the hypergraph was built with.
func (h *Hypergraph) InitialNumEdges() int { return h.numEdges }

// CurrentNumNodes returns the number of currently enabled hypernodes.
func (h *Hypergraph) CurrentNumNodes() int { return h.currentNumNodes }

// CurrentNumEdges returns the number of currently enabled hyperedges.
func (h *Hypergraph) CurrentNumEdges() int { return h.currentNumEdges }

// CurrentNumPins returns the number of currently enabled pins.
func (h *Hypergraph) CurrentNumPins() int { return h.currentNumPins }

// AdjustCurrentCounts applies deltas to the aggregate counters. Enable and
// disable flags deliberately do not touch the counters; the merge pre-phase
// reconciles them once, serially.
func (h *Hypergraph) AdjustCurrentCounts(dNodes, dEdges, dPins int) {
	h.currentNumNodes += dNodes
	h.currentNumEdges += dEdges
	h.currentNumPins += dPins
}

// ============================================================================
// Enumeration
// ============================================================================

// Nodes returns the enabled hypernodes in ascending id order.
func (h *Hypergraph) Nodes() []int {
	nodes := make([]int, 0, h.currentNumNodes)
	for v := 0; v < h.numNodes; v++ {
		if h.nodeEnabled[v] {
			nodes = append(nodes, v)
		}
	}
	return nodes
}

// Edges returns the enabled hyperedges in ascending id order.
func (h *Hypergraph) Edges() []int {
	edges := make([]int, 0, h.currentNumEdges)
	for e := 0; e < h.numEdges; e++ {
		if h.edgeEnabled[e] {
			edges = append(edges, e)
		}
	}
	return edges
}

// IncidentEdges returns the hyperedges incident to v. The returned slice is
// owned by the hypergraph and must not be mutated by the caller.
func (h *Hypergraph) IncidentEdges(v int) []int {
	return h.incidentEdges[v]
}

// SetIncidentEdges replaces the incident-net list of v.
func (h *Hypergraph) SetIncidentEdges(v int, nets []int) {
	h.incidentEdges[v] = nets
}

// Pins returns the enabled pins of e, in incidence-array order.
func (h *Hypergraph) Pins(e int) []int {
	return h.incidence[h.edgeOffsets[e] : h.edgeOffsets[e]+h.edgeSizes[e]]
}

// SlotPins returns every pin in e's incidence slot, enabled prefix and
// disabled suffix alike.
func (h *Hypergraph) SlotPins(e int) []int {
	return h.incidence[h.edgeOffsets[e]:h.edgeOffsets[e+1]]
}

// ============================================================================
// Incidence-array offsets and direct access
// ============================================================================

// FirstEntry returns the offset of e's slot in the incidence array.
// FirstEntry(InitialNumEdges()) is the total incidence length.
func (h *Hypergraph) FirstEntry(e int) int { return h.edgeOffsets[e] }

// FirstInvalidEntry returns the offset one past e's last enabled pin.
func (h *Hypergraph) FirstInvalidEntry(e int) int {
	return h.edgeOffsets[e] + h.edgeSizes[e]
}

// Incidence exposes the flat incidence array for direct slot writes.
// Concurrent writers must stay within disjoint index windows.
func (h *Hypergraph) Incidence() []int { return h.incidence }

// EdgeSize returns the number of enabled pins of e.
func (h *Hypergraph) EdgeSize(e int) int { return h.edgeSizes[e] }

// DecrementEdgeSize shrinks e's enabled prefix by one entry. It does not
// touch the aggregate pin counter.
func (h *Hypergraph) DecrementEdgeSize(e int) {
	if h.edgeSizes[e] == 0 {
		panic(fmt.Sprintf("hypergraph: decrement on empty hyperedge %d", e))
	}
	h.edgeSizes[e]--
}

// ============================================================================
// Node and edge attributes
// ============================================================================

// CommunityID returns the community label of v.
func (h *Hypergraph) CommunityID(v int) int { return h.communities[v] }

// SetCommunityID sets the community label of v.
func (h *Hypergraph) SetCommunityID(v int, community int) {
	h.communities[v] = community
}

// SetCommunities assigns all community labels at once.
func (h *Hypergraph) SetCommunities(communities []int) {
	if len(communities) != h.numNodes {
		panic(fmt.Sprintf("hypergraph: %d community labels for %d hypernodes",
			len(communities), h.numNodes))
	}
	copy(h.communities, communities)
}

// NodeWeight returns the weight of v.
func (h *Hypergraph) NodeWeight(v int) int64 { return h.nodeWeights[v] }

// SetNodeWeight sets the weight of v.
func (h *Hypergraph) SetNodeWeight(v int, w int64) { h.nodeWeights[v] = w }

// EdgeWeight returns the weight of e.
func (h *Hypergraph) EdgeWeight(e int) int64 { return h.edgeWeights[e] }

// SetEdgeWeight sets the weight of e.
func (h *Hypergraph) SetEdgeWeight(e int, w int64) { h.edgeWeights[e] = w }

// NodeIsEnabled reports whether v is enabled.
func (h *Hypergraph) NodeIsEnabled(v int) bool { return h.nodeEnabled[v] }

// EdgeIsEnabled reports whether e is enabled.
func (h *Hypergraph) EdgeIsEnabled(e int) bool { return h.edgeEnabled[e] }

// DisableNode marks v disabled. Counters are adjusted separately.
func (h *Hypergraph) DisableNode(v int) { h.nodeEnabled[v] = false }

// EnableNode marks v enabled.
func (h *Hypergraph) EnableNode(v int) { h.nodeEnabled[v] = true }

// DisableEdge marks e disabled. Counters are adjusted separately.
func (h *Hypergraph) DisableEdge(e int) { h.edgeEnabled[e] = false }

// EnableEdge marks e enabled.
func (h *Hypergraph) EnableEdge(e int) { h.edgeEnabled[e] = true }

// EdgeHash returns the incidence hash of e.
func (h *Hypergraph) EdgeHash(e int) uint64 { return h.edgeHashes[e] }

// SetEdgeHash sets the incidence hash of e.
func (h *Hypergraph) SetEdgeHash(e int, hash uint64) { h.edgeHashes[e] = hash }

// ResetEdgeHash resets e's hash to the seed.
func (h *Hypergraph) ResetEdgeHash(e int) { h.edgeHashes[e] = EdgeHashSeed }

// ============================================================================
// Contraction
// ============================================================================

// Contract merges hypernode v into representative u and returns the memento.
//
// For every hyperedge incident to v: if the edge also contains u, v is
// swapped behind the enabled prefix (it becomes a disabled pin, preserved
// for uncontraction); otherwise v's incidence entry is rewritten to u and
// the edge joins u's incident nets. v ends up disabled.
func (h *Hypergraph) Contract(u, v int) Memento {
	if u == v {
		panic("hypergraph: contraction of a hypernode with itself")
	}
	if !h.nodeEnabled[u] || !h.nodeEnabled[v] {
		panic(fmt.Sprintf("hypergraph: contraction (%d, %d) involves a disabled hypernode", u, v))
	}

	h.nodeWeights[u] += h.nodeWeights[v]

	for _, e := range h.incidentEdges[v] {
		if !h.edgeEnabled[e] {
			continue
		}

		first := h.edgeOffsets[e]
		firstInvalid := first + h.edgeSizes[e]
		pos := -1
		containsU := false
		for j := first; j < firstInvalid; j++ {
			switch h.incidence[j] {
			case v:
				pos = j
			case u:
				containsU = true
			}
		}
		if pos < 0 {
			panic(fmt.Sprintf("hypergraph: hypernode %d missing from incident hyperedge %d", v, e))
		}

		if containsU {
			// u and v share e: drop v into the disabled suffix.
			h.incidence[pos] = h.incidence[firstInvalid-1]
			h.incidence[firstInvalid-1] = v
			h.edgeSizes[e]--
			h.currentNumPins--
		} else {
			h.incidence[pos] = u
			h.incidentEdges[u] = append(h.incidentEdges[u], e)
		}
	}

	h.nodeEnabled[v] = false
	h.currentNumNodes--

	return Memento{U: u, V: v}
}

// ============================================================================
// Pin hashing
// ============================================================================

// HashNode maps a hypernode id to a 64-bit hash value. Edge hashes are the
// seeded sum of the hashes of their enabled pins.
func HashNode(v int) uint64 {
	x := uint64(v) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
