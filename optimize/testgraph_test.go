package optimize

import (
	"qosrouting/metrics"
	"qosrouting/netgraph"
)

// smallDiamondGraph gives every optimizer two obviously distinguishable
// S-D routes: a fast/unreliable one (0-1-3) and a slow/reliable one
// (0-2-3), so cost-minimization behavior is easy to assert on.
func smallDiamondGraph() *netgraph.Graph {
	g := netgraph.New()
	for i := 0; i < 4; i++ {
		g.AddNode(i, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	}
	g.AddEdge(0, 1, netgraph.Edge{Bandwidth: 500, Delay: 2, Reliability: 0.95})
	g.AddEdge(1, 3, netgraph.Edge{Bandwidth: 500, Delay: 2, Reliability: 0.95})
	g.AddEdge(0, 2, netgraph.Edge{Bandwidth: 500, Delay: 10, Reliability: 0.999})
	g.AddEdge(2, 3, netgraph.Edge{Bandwidth: 500, Delay: 10, Reliability: 0.999})
	return g
}

// lowBandwidthGraph has exactly one S-D route and it can't satisfy a
// realistic bandwidth demand.
func lowBandwidthGraph() *netgraph.Graph {
	g := netgraph.New()
	for i := 0; i < 3; i++ {
		g.AddNode(i, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	}
	g.AddEdge(0, 1, netgraph.Edge{Bandwidth: 100, Delay: 5, Reliability: 0.99})
	g.AddEdge(1, 2, netgraph.Edge{Bandwidth: 100, Delay: 5, Reliability: 0.99})
	return g
}

func disconnectedGraph() *netgraph.Graph {
	g := netgraph.New()
	g.AddNode(0, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	g.AddNode(1, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	return g
}

var delayWeights = metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}
