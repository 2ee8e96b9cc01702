package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosrouting/metrics"
	"qosrouting/netgraph"
)

func TestParetoFrontier_NonEmptyOnConnectedGraph(t *testing.T) {
	g := gridGraph()
	frontier := ParetoFrontier(g, 0, 2, 0, 8, 1)
	require.NotEmpty(t, frontier)
}

func TestParetoFrontier_NoMemberDominatesAnother(t *testing.T) {
	g := gridGraph()
	frontier := ParetoFrontier(g, 0, 2, 0, 8, 1)
	for i, a := range frontier {
		for j, b := range frontier {
			if i == j {
				continue
			}
			assert.False(t, metrics.Dominates(a, b), "frontier member %d should not dominate member %d", i, j)
		}
	}
}

func TestParetoFrontier_DeterministicForFixedSeed(t *testing.T) {
	g := gridGraph()
	a := ParetoFrontier(g, 0, 2, 0, 8, 42)
	b := ParetoFrontier(g, 0, 2, 0, 8, 42)
	assert.Equal(t, a, b)
}

func TestParetoFrontier_UnreachablePairIsEmpty(t *testing.T) {
	g := gridGraph()
	g.AddNode(9, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	frontier := ParetoFrontier(g, 0, 9, 0, 8, 1)
	assert.Empty(t, frontier)
}
