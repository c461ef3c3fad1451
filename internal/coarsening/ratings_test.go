package coarsening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpart/internal/hypergraph"
)

func TestBestRatedPartner_PrefersHeavyEdges(t *testing.T) {
	// u=0 shares a weight-10 pair edge with 1 and a weight-1 pair edge
	// with 2; the heavy edge must win.
	h := hypergraph.New(3, [][]int{{0, 1}, {0, 2}}, []int64{10, 1}, nil)
	h.SetCommunities([]int{0, 0, 0})

	assert.Equal(t, 1, bestRatedPartner(h, 0, 0))
}

func TestBestRatedPartner_IgnoresOtherCommunities(t *testing.T) {
	h := hypergraph.New(3, [][]int{{0, 1}, {0, 2}}, []int64{10, 1}, nil)
	h.SetCommunities([]int{0, 1, 0})

	// 1 has the heavier edge but is in another community.
	assert.Equal(t, 2, bestRatedPartner(h, 0, 0))
}

func TestBestRatedPartner_NoCandidate(t *testing.T) {
	h := hypergraph.New(2, [][]int{{0, 1}}, nil, nil)
	h.SetCommunities([]int{0, 1})

	assert.Equal(t, -1, bestRatedPartner(h, 0, 0))
}

func TestBestRatedPartner_TieBreaksTowardSmallerID(t *testing.T) {
	h := hypergraph.New(3, [][]int{{0, 2}, {0, 1}}, []int64{3, 3}, nil)
	h.SetCommunities([]int{0, 0, 0})

	assert.Equal(t, 1, bestRatedPartner(h, 0, 0))
}

func TestCoarsenCommunity_RespectsNodeLimit(t *testing.T) {
	h := hypergraph.New(4, [][]int{{0, 1}, {1, 2}, {2, 3}}, nil, nil)
	h.SetCommunities([]int{0, 0, 0, 0})

	s := Extract(h, 0, true)
	CoarsenCommunity(s, 2)

	members := 0
	for v := 0; v < s.Hg.InitialNumNodes(); v++ {
		if s.Hg.NodeIsEnabled(v) && s.Hg.CommunityID(v) == 0 {
			members++
		}
	}
	assert.Equal(t, 2, members)
	assert.Len(t, s.History, 2)
}

func TestCoarsenCommunity_NeverContractsExternalPins(t *testing.T) {
	h := hypergraph.New(4, [][]int{{0, 1, 2, 3}}, nil, nil)
	h.SetCommunities([]int{0, 0, 1, 1})

	s := Extract(h, 0, true)
	CoarsenCommunity(s, 1)

	for _, m := range s.History {
		assert.Equal(t, 0, s.Hg.CommunityID(m.U))
		assert.Equal(t, 0, s.Hg.CommunityID(m.V))
	}
	// External pins stay enabled.
	for local, g := range s.LocalToGlobalNode {
		if h.CommunityID(g) != 0 {
			assert.True(t, s.Hg.NodeIsEnabled(local))
		}
	}
}

func TestCoarsenCommunity_DisablesSinglePinEdges(t *testing.T) {
	h := hypergraph.New(2, [][]int{{0, 1}}, nil, nil)
	h.SetCommunities([]int{0, 0})

	s := Extract(h, 0, true)
	CoarsenCommunity(s, 1)

	require.Len(t, s.History, 1)
	assert.False(t, s.Hg.EdgeIsEnabled(0))
	assert.Equal(t, 0, s.Hg.CurrentNumEdges())
}

func TestCoarsenCommunity_EmptySubhypergraph(t *testing.T) {
	h := hypergraph.New(2, [][]int{{0, 1}}, nil, nil)
	h.SetCommunities([]int{0, 0})

	s := Extract(h, 9, true)
	CoarsenCommunity(s, 1) // must not panic
	assert.Empty(t, s.History)
}
