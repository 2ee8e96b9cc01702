package netgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTriangle() *Graph {
	g := New()
	g.AddNode(0, Node{ProcessingDelay: 1, Reliability: 0.99})
	g.AddNode(1, Node{ProcessingDelay: 1, Reliability: 0.99})
	g.AddNode(2, Node{ProcessingDelay: 1, Reliability: 0.99})
	g.AddEdge(0, 1, Edge{Bandwidth: 500, Delay: 5, Reliability: 0.98})
	g.AddEdge(1, 2, Edge{Bandwidth: 300, Delay: 8, Reliability: 0.97})
	return g
}

func TestAddEdge_IsUndirected(t *testing.T) {
	g := sampleTriangle()
	e1, ok1 := g.Edge(0, 1)
	e2, ok2 := g.Edge(1, 0)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, e1, e2)
}

func TestNeighbors_ReflectsBothDirections(t *testing.T) {
	g := sampleTriangle()
	assert.ElementsMatch(t, []int{1}, g.Neighbors(0))
	assert.ElementsMatch(t, []int{0, 2}, g.Neighbors(1))
}

func TestNeighbors_IsSortedAscending(t *testing.T) {
	g := New()
	for _, id := range []int{0, 5, 3, 9, 1} {
		g.AddNode(id, Node{ProcessingDelay: 1, Reliability: 0.99})
		if id != 0 {
			g.AddEdge(0, id, Edge{Bandwidth: 500, Delay: 5, Reliability: 0.98})
		}
	}

	for i := 0; i < 20; i++ {
		assert.Equal(t, []int{1, 3, 5, 9}, g.Neighbors(0))
	}
}

func TestRemoveEdge_ClearsBothDirections(t *testing.T) {
	g := sampleTriangle()
	g.RemoveEdge(0, 1)
	assert.False(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 0))
	assert.NotContains(t, g.Neighbors(1), 0)
}

func TestNumNodesAndNumEdges(t *testing.T) {
	g := sampleTriangle()
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
}

func TestConnected_TrueForChain(t *testing.T) {
	g := sampleTriangle()
	assert.True(t, g.Connected())
}

func TestConnected_FalseAfterIsolatingNode(t *testing.T) {
	g := sampleTriangle()
	g.RemoveEdge(1, 2)
	assert.False(t, g.Connected())
}

func TestConnected_TrueForEmptyGraph(t *testing.T) {
	assert.True(t, New().Connected())
}

func TestReachable_FalseForUnknownNode(t *testing.T) {
	g := sampleTriangle()
	assert.False(t, g.Reachable(0, 99))
	assert.False(t, g.Reachable(99, 0))
}

func TestReachable_TrueTransitively(t *testing.T) {
	g := sampleTriangle()
	assert.True(t, g.Reachable(0, 2))
}

func TestReachableWithBandwidth_ExcludesThinEdges(t *testing.T) {
	g := sampleTriangle()
	assert.True(t, g.ReachableWithBandwidth(0, 2, 200))
	assert.False(t, g.ReachableWithBandwidth(0, 2, 400))
}

func TestClone_IsIndependent(t *testing.T) {
	g := sampleTriangle()
	clone := g.Clone()
	clone.RemoveEdge(0, 1)

	assert.False(t, clone.HasEdge(0, 1))
	assert.True(t, g.HasEdge(0, 1))
}

func TestValidate_AcceptsInRangeAttributes(t *testing.T) {
	g := sampleTriangle()
	assert.NoError(t, g.Validate())
}

func TestValidate_RejectsOutOfRangeNodeAttribute(t *testing.T) {
	g := sampleTriangle()
	g.AddNode(0, Node{ProcessingDelay: 10, Reliability: 0.99})
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing_delay")
}

func TestValidate_RejectsOutOfRangeEdgeAttribute(t *testing.T) {
	g := sampleTriangle()
	g.AddEdge(0, 1, Edge{Bandwidth: 5000, Delay: 5, Reliability: 0.98})
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bandwidth")
}
