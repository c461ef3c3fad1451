package coarsening

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperpart/internal/hypergraph"
)

func TestBuildContractionIndex_Small(t *testing.T) {
	history := []hypergraph.Memento{
		{U: 1, V: 5},
		{U: 1, V: 3},
		{U: 2, V: 7},
	}

	index := buildContractionIndex(context.Background(), testPool(), history, 10)

	assert.Equal(t, 0, index[5])
	assert.Equal(t, 1, index[3])
	assert.Equal(t, 2, index[7])
	for _, v := range []int{0, 1, 2, 4, 6, 8, 9} {
		assert.Equal(t, -1, index[v], "hypernode %d was never contracted", v)
	}
}

func TestBuildContractionIndex_LargeParallel(t *testing.T) {
	n := serialIndexThreshold * 2
	history := make([]hypergraph.Memento, n)
	for i := range history {
		history[i] = hypergraph.Memento{U: n, V: i}
	}

	index := buildContractionIndex(context.Background(), testPool(), history, n+1)

	for i := 0; i < n; i++ {
		assert.Equal(t, i, index[i])
	}
	assert.Equal(t, -1, index[n])
}

func TestBuildContractionIndex_DuplicatePanics(t *testing.T) {
	history := []hypergraph.Memento{
		{U: 0, V: 2},
		{U: 1, V: 2},
	}
	assert.Panics(t, func() {
		buildContractionIndex(context.Background(), testPool(), history, 4)
	})
}
