// Package pathutil implements the shared path-construction primitives used
// by every optimizer: cached weighted shortest paths, k-simple-path
// enumeration, and guided random walks. These are the "neighbor cache" and
// "path utilities" referenced throughout the specification's component
// design.
package pathutil

import (
	"container/heap"
	"math"

	"qosrouting/netgraph"
)

// WeightScheme selects which per-edge scalar Dijkstra and Yen's algorithm
// optimize over. Each optimizer picks the scheme matching its own notion of
// "shortest" when it needs a seed path or a bound.
type WeightScheme int

const (
	WeightHops WeightScheme = iota
	WeightDelay
	WeightNegLogReliability
	WeightInverseBandwidth
)

// edgeWeight returns the scalar weight of edge (u,v) under scheme. Callers
// must already know the edge exists.
func edgeWeight(e netgraph.Edge, scheme WeightScheme) float64 {
	switch scheme {
	case WeightDelay:
		return e.Delay
	case WeightNegLogReliability:
		return -math.Log(e.Reliability)
	case WeightInverseBandwidth:
		return 1.0 / e.Bandwidth
	default: // WeightHops
		return 1.0
	}
}

type nodeItem struct {
	id     int
	dist   float64
	index  int
	parent int
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *nodePQ) Push(x interface{}) { it := x.(*nodeItem); it.index = len(*pq); *pq = append(*pq, it) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return it
}

// excludeSet marks edges and nodes that Dijkstra must treat as absent, used
// by Yen's algorithm to compute spur paths without mutating the graph.
type excludeSet struct {
	edges map[[2]int]bool
	nodes map[int]bool
}

func (x *excludeSet) edgeExcluded(u, v int) bool {
	if x == nil {
		return false
	}
	if x.nodes[u] || x.nodes[v] {
		return true
	}
	return x.edges[[2]int{u, v}] || x.edges[[2]int{v, u}]
}

// Dijkstra computes the lowest-weight path from source to dest under scheme.
// It returns (nil, +Inf, false) if dest is unreachable. Ties in distance are
// broken arbitrarily by heap order, matching the teacher's min-heap shortest
// path search.
func Dijkstra(g *netgraph.Graph, source, dest int, scheme WeightScheme) ([]int, float64, bool) {
	return dijkstraExcluding(g, source, dest, scheme, nil)
}

func dijkstraExcluding(g *netgraph.Graph, source, dest int, scheme WeightScheme, excl *excludeSet) ([]int, float64, bool) {
	if !g.HasNode(source) || !g.HasNode(dest) {
		return nil, math.Inf(1), false
	}
	if excl != nil && (excl.nodes[source] || excl.nodes[dest]) {
		return nil, math.Inf(1), false
	}

	dist := map[int]float64{source: 0}
	parent := map[int]int{source: -1}
	visited := make(map[int]bool)

	pq := &nodePQ{}
	heap.Init(pq)
	heap.Push(pq, &nodeItem{id: source, dist: 0, parent: -1})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*nodeItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == dest {
			break
		}

		for _, v := range g.Neighbors(cur.id) {
			if visited[v] || excl.edgeExcluded(cur.id, v) {
				continue
			}
			e, ok := g.Edge(cur.id, v)
			if !ok {
				continue
			}
			nd := dist[cur.id] + edgeWeight(e, scheme)
			if d, seen := dist[v]; !seen || nd < d {
				dist[v] = nd
				parent[v] = cur.id
				heap.Push(pq, &nodeItem{id: v, dist: nd, parent: cur.id})
			}
		}
	}

	if _, ok := dist[dest]; !ok {
		return nil, math.Inf(1), false
	}

	var path []int
	for at := dest; at != -1; at = parent[at] {
		path = append([]int{at}, path...)
	}
	return path, dist[dest], true
}

// PathWeight sums edgeWeight along path under scheme. Returns +Inf if any
// consecutive pair is not an edge.
func PathWeight(g *netgraph.Graph, path []int, scheme WeightScheme) float64 {
	if len(path) < 2 {
		return math.Inf(1)
	}
	var total float64
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.Edge(path[i], path[i+1])
		if !ok {
			return math.Inf(1)
		}
		total += edgeWeight(e, scheme)
	}
	return total
}
