package hypergraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hyperpart/pkg/errors"
)

func TestParse_BothWeights(t *testing.T) {
	input := "3 4 11\n2 1 2\n3 2 3 4\n1 4\n5\n6\n7\n8\n"

	h, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, h.InitialNumEdges())
	assert.Equal(t, 4, h.InitialNumNodes())

	assert.Equal(t, int64(2), h.EdgeWeight(0))
	assert.Equal(t, int64(3), h.EdgeWeight(1))
	assert.Equal(t, int64(1), h.EdgeWeight(2))

	assert.Equal(t, []int{0, 1}, h.Pins(0))
	assert.Equal(t, []int{1, 2, 3}, h.Pins(1))
	assert.Equal(t, []int{3}, h.Pins(2))

	assert.Equal(t, int64(5), h.NodeWeight(0))
	assert.Equal(t, int64(6), h.NodeWeight(1))
	assert.Equal(t, int64(7), h.NodeWeight(2))
	assert.Equal(t, int64(8), h.NodeWeight(3))
}

func TestParse_Unweighted(t *testing.T) {
	input := "2 4 0\n1 2 3\n3 4\n"

	h, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, h.Pins(0))
	assert.Equal(t, []int{2, 3}, h.Pins(1))
	assert.Equal(t, int64(1), h.EdgeWeight(0))
	assert.Equal(t, int64(1), h.NodeWeight(0))
}

func TestParse_CommentsAndMissingType(t *testing.T) {
	input := "% generated by a circuit netlist exporter\n% second comment\n2 3\n1 2\n2 3\n"

	h, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, h.InitialNumEdges())
	assert.Equal(t, 3, h.InitialNumNodes())
}

func TestParse_NodeWeightsOnly(t *testing.T) {
	input := "1 2 10\n1 2\n3\n9\n"

	h, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.NodeWeight(0))
	assert.Equal(t, int64(9), h.NodeWeight(1))
	assert.Equal(t, int64(1), h.EdgeWeight(0))
}

func TestParse_InvalidType(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 7\n1 2\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestParse_PinOutOfRange(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 0\n1 5\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))

	_, err = Parse(strings.NewReader("1 2 0\n0 1\n"))
	require.Error(t, err)
}

func TestParse_Truncated(t *testing.T) {
	_, err := Parse(strings.NewReader("3 4 0\n1 2\n"))
	require.Error(t, err)

	_, err = Parse(strings.NewReader("1 2 10\n1 2\n"))
	require.Error(t, err)
}

func TestParse_EmptyEdge(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 1\n4\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}
