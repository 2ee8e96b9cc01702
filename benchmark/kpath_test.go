package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosrouting/netgraph"
	"qosrouting/pathutil"
)

func gridGraph() *netgraph.Graph {
	g := netgraph.New()
	for i := 0; i < 6; i++ {
		g.AddNode(i, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	}
	g.AddEdge(0, 1, netgraph.Edge{Bandwidth: 500, Delay: 1, Reliability: 0.99})
	g.AddEdge(1, 2, netgraph.Edge{Bandwidth: 500, Delay: 1, Reliability: 0.99})
	g.AddEdge(0, 3, netgraph.Edge{Bandwidth: 500, Delay: 2, Reliability: 0.99})
	g.AddEdge(3, 2, netgraph.Edge{Bandwidth: 500, Delay: 2, Reliability: 0.99})
	g.AddEdge(0, 4, netgraph.Edge{Bandwidth: 200, Delay: 5, Reliability: 0.99})
	g.AddEdge(4, 2, netgraph.Edge{Bandwidth: 200, Delay: 5, Reliability: 0.99})
	return g
}

func TestKCheapestSimplePaths_OrderedNonDecreasing(t *testing.T) {
	g := gridGraph()
	paths := KCheapestSimplePaths(g, 0, 2, 0, 5, pathutil.WeightDelay)
	require.NotEmpty(t, paths)
	for i := 1; i < len(paths); i++ {
		assert.LessOrEqual(t, paths[i-1].Cost, paths[i].Cost)
	}
}

func TestKCheapestSimplePaths_RespectsBandwidthFloor(t *testing.T) {
	g := gridGraph()
	paths := KCheapestSimplePaths(g, 0, 2, 300, 10, pathutil.WeightDelay)
	for _, p := range paths {
		for i := 0; i < len(p.Nodes)-1; i++ {
			e, _ := g.Edge(p.Nodes[i], p.Nodes[i+1])
			assert.GreaterOrEqual(t, e.Bandwidth, 300.0)
		}
	}
}

func TestOptimalityGap_ZeroWhenEqual(t *testing.T) {
	assert.Equal(t, 0.0, OptimalityGap(5.0, 5.0))
}

func TestOptimalityGap_PositiveWhenWorse(t *testing.T) {
	gap := OptimalityGap(6.0, 4.0)
	assert.InDelta(t, 0.5, gap, 1e-9)
}

func TestOptimalityGap_ZeroBenchmarkIsSafe(t *testing.T) {
	assert.Equal(t, 0.0, OptimalityGap(3.0, 0.0))
}
