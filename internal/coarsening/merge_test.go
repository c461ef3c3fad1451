package coarsening

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/parallel"
)

func testPool() parallel.PoolConfig {
	return parallel.DefaultPoolConfig().WithWorkers(4)
}

// Identity round trip: extract every community, contract nothing, merge.
// The parent must come back with the same incidence contents, counts,
// weights and flags; only the hashes are recomputed (to the same value).
func TestMerge_IdentityRoundTrip(t *testing.T) {
	h := twoCommunityInstance()
	wantIncidence := append([]int(nil), h.Incidence()...)
	wantHash := h.EdgeHash(0)

	subs := []*Subhypergraph{
		Extract(h, 0, true),
		Extract(h, 1, true),
	}

	Merge(context.Background(), testPool(), h, subs, nil)

	assert.Equal(t, wantIncidence, h.Incidence())
	assert.Equal(t, wantHash, h.EdgeHash(0))
	assert.Equal(t, 4, h.CurrentNumNodes())
	assert.Equal(t, 1, h.CurrentNumEdges())
	assert.Equal(t, 4, h.CurrentNumPins())
	assert.Equal(t, 4, h.EdgeSize(0))
	for v := 0; v < 4; v++ {
		assert.True(t, h.NodeIsEnabled(v))
		assert.Equal(t, int64(1), h.NodeWeight(v))
		assert.Equal(t, []int{0}, h.IncidentEdges(v))
	}
}

// Contracting 1 into 0 inside community A must reproduce the parent with
// hypernode 1 disabled, its pin in the disabled suffix, and the enabled
// prefix compacted.
func TestMerge_SingleContraction(t *testing.T) {
	h := twoCommunityInstance()

	sa := Extract(h, 0, true)
	sb := Extract(h, 1, true)
	sa.History = append(sa.History, sa.Hg.Contract(0, 1))

	history := []hypergraph.Memento{{U: 0, V: 1}}
	Merge(context.Background(), testPool(), h, []*Subhypergraph{sa, sb}, history)

	assert.False(t, h.NodeIsEnabled(1))
	assert.Equal(t, int64(2), h.NodeWeight(0))
	assert.Equal(t, 3, h.CurrentNumNodes())
	assert.Equal(t, 3, h.CurrentNumPins())

	assert.Equal(t, 3, h.EdgeSize(0))
	assert.ElementsMatch(t, []int{0, 2, 3}, h.Pins(0))
	suffix := h.Incidence()[h.FirstInvalidEntry(0):h.FirstEntry(1)]
	assert.Equal(t, []int{1}, suffix)

	wantHash := hypergraph.EdgeHashSeed
	for _, p := range h.Pins(0) {
		wantHash += hypergraph.HashNode(p)
	}
	assert.Equal(t, wantHash, h.EdgeHash(0))
}

// A hyperedge disabled inside one community must come out disabled in the
// parent, with its surviving pin compacted and counts reconciled.
func TestMerge_DisabledHyperedge(t *testing.T) {
	h := hypergraph.New(3, [][]int{{0, 1}, {1, 2}}, nil, nil)
	h.SetCommunities([]int{0, 0, 1})

	sa := Extract(h, 0, true)
	sb := Extract(h, 1, true)

	CoarsenCommunity(sa, 1)
	require.Len(t, sa.History, 1)
	assert.Equal(t, hypergraph.Memento{U: 0, V: 1}, sa.History[0])
	assert.False(t, sa.Hg.EdgeIsEnabled(0), "single-pin hyperedge must be disabled in the child")

	history := []hypergraph.Memento{{U: 0, V: 1}}
	Merge(context.Background(), testPool(), h, []*Subhypergraph{sa, sb}, history)

	assert.False(t, h.EdgeIsEnabled(0))
	assert.False(t, h.NodeIsEnabled(1))
	assert.Equal(t, 2, h.CurrentNumNodes())
	assert.Equal(t, 1, h.CurrentNumEdges())

	// e1 {1, 2} had its community-A pin rewritten to the representative.
	assert.Equal(t, []int{0, 2}, h.Pins(1))

	// The disabled hyperedge still carries a correct enabled prefix.
	assert.Equal(t, 1, h.EdgeSize(0))
	assert.Equal(t, []int{1}, h.Incidence()[h.FirstInvalidEntry(0):h.FirstEntry(1)])
}

// Contraction-order scenario: history [{v:5}, {v:3}, {v:7}] must order a
// disabled suffix as [7, 3, 5] (strictly decreasing contraction index).
func TestMerge_DisabledSuffixOrdering(t *testing.T) {
	h := hypergraph.New(8, [][]int{{1, 3, 5, 7}}, nil, nil)
	h.DisableNode(5)
	h.DisableNode(3)
	h.DisableNode(7)

	history := []hypergraph.Memento{
		{U: 1, V: 5},
		{U: 1, V: 3},
		{U: 1, V: 7},
	}

	Merge(context.Background(), testPool(), h, nil, history)

	assert.Equal(t, []int{1}, h.Pins(0))
	suffix := h.Incidence()[h.FirstInvalidEntry(0):h.FirstEntry(1)]
	assert.Equal(t, []int{7, 3, 5}, suffix)

	assert.Equal(t, hypergraph.EdgeHashSeed+hypergraph.HashNode(1), h.EdgeHash(0))
}

// Weight monotonicity: the merged weight is the maximum over communities,
// regardless of merge order.
func TestMerge_EdgeWeightMonotoneMax(t *testing.T) {
	h := twoCommunityInstance()

	sa := Extract(h, 0, true)
	sb := Extract(h, 1, true)
	sa.Hg.SetEdgeWeight(0, 5)
	sb.Hg.SetEdgeWeight(0, 3)

	Merge(context.Background(), testPool(), h, []*Subhypergraph{sa, sb}, nil)
	assert.Equal(t, int64(5), h.EdgeWeight(0))

	// Reversed order must give the same result.
	h2 := twoCommunityInstance()
	sa2 := Extract(h2, 0, true)
	sb2 := Extract(h2, 1, true)
	sa2.Hg.SetEdgeWeight(0, 5)
	sb2.Hg.SetEdgeWeight(0, 3)

	Merge(context.Background(), testPool(), h2, []*Subhypergraph{sb2, sa2}, nil)
	assert.Equal(t, int64(5), h2.EdgeWeight(0))
}

// Merging an empty community subhypergraph is a no-op.
func TestMerge_EmptyCommunity(t *testing.T) {
	h := twoCommunityInstance()
	wantIncidence := append([]int(nil), h.Incidence()...)

	empty := Extract(h, 42, true)
	subs := []*Subhypergraph{Extract(h, 0, true), Extract(h, 1, true), empty}

	Merge(context.Background(), testPool(), h, subs, nil)

	assert.Equal(t, wantIncidence, h.Incidence())
	assert.Equal(t, 4, h.CurrentNumNodes())
}

func TestMerge_CursorMismatchPanics(t *testing.T) {
	h := twoCommunityInstance()
	sa := Extract(h, 0, true)

	// Corrupt the reserved window to trigger the cursor assertion.
	sa.LocalToGlobalEdge[0].End = 3

	assert.Panics(t, func() {
		writeCommunityResults(h, sa)
	})
}
