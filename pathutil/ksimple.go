package pathutil

import (
	"container/heap"
	"math"

	"qosrouting/netgraph"
)

const maxKSimplePaths = 500

// SimplePath is one candidate in a k-simple-paths result set.
type SimplePath struct {
	Nodes []int
	Cost  float64
}

type simplePathPQ []SimplePath

func (h simplePathPQ) Len() int { return len(h) }
func (h simplePathPQ) Less(i, j int) bool {
	if h[i].Cost != h[j].Cost {
		return h[i].Cost < h[j].Cost
	}
	return len(h[i].Nodes) < len(h[j].Nodes)
}
func (h simplePathPQ) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *simplePathPQ) Push(x interface{}) { *h = append(*h, x.(SimplePath)) }
func (h *simplePathPQ) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

func sameNodes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// KSimplePaths enumerates up to k loopless paths from source to dest in
// non-decreasing order of weight under scheme, via Yen's algorithm: find the
// shortest path, then repeatedly deviate from a "spur node" along each
// previously accepted path, collecting spur-path candidates in a min-heap
// and promoting the cheapest each round. Grounded on the teacher's
// middle_mile_scheduling/k_shortest package, adapted from a dense latency
// matrix to netgraph.Graph and from integer hop-penalized latency to the
// selectable float WeightScheme used across this module.
//
// k is clamped to maxKSimplePaths. If minBandwidth > 0, candidate paths
// whose minimum edge bandwidth is below it are discarded as they are
// produced, per the bandwidth-feasibility requirement on k-path benchmarks.
func KSimplePaths(g *netgraph.Graph, source, dest int, k int, scheme WeightScheme, minBandwidth float64) []SimplePath {
	if k > maxKSimplePaths {
		k = maxKSimplePaths
	}
	if k <= 0 {
		return nil
	}

	var accepted []SimplePath

	firstPath, firstCost, ok := Dijkstra(g, source, dest, scheme)
	if !ok {
		return nil
	}
	if feasible(g, firstPath, minBandwidth) {
		accepted = append(accepted, SimplePath{Nodes: firstPath, Cost: firstCost})
	}

	candidates := &simplePathPQ{}
	heap.Init(candidates)
	seen := make(map[string]bool)

	lastPath := firstPath
	maxRounds := maxKSimplePaths * 10
	for round := 0; len(accepted) < k && round < maxRounds; round++ {
		prev := lastPath
		for i := 0; i < len(prev)-1; i++ {
			spurNode := prev[i]
			rootPath := prev[:i+1]

			excl := &excludeSet{edges: make(map[[2]int]bool), nodes: make(map[int]bool)}
			for _, acceptedPath := range accepted {
				if len(acceptedPath.Nodes) > i && sameNodes(acceptedPath.Nodes[:i+1], rootPath) {
					excl.edges[[2]int{acceptedPath.Nodes[i], acceptedPath.Nodes[i+1]}] = true
				}
			}
			for j := 0; j < len(rootPath)-1; j++ {
				excl.nodes[rootPath[j]] = true
			}

			spurPath, spurCost, ok := dijkstraExcluding(g, spurNode, dest, scheme, excl)
			if !ok {
				continue
			}

			total := append(append([]int{}, rootPath[:len(rootPath)-1]...), spurPath...)
			_ = spurCost // cost recomputed over the full joined path below

			cost := PathWeight(g, total, scheme)
			key := pathKey(total)
			if seen[key] {
				continue
			}
			seen[key] = true
			heap.Push(candidates, SimplePath{Nodes: total, Cost: cost})
		}

		if candidates.Len() == 0 {
			break
		}
		next := heap.Pop(candidates).(SimplePath)
		if feasible(g, next.Nodes, minBandwidth) {
			accepted = append(accepted, next)
		}
		lastPath = next.Nodes

		if math.IsInf(next.Cost, 1) {
			break
		}
	}

	return accepted
}

func feasible(g *netgraph.Graph, path []int, minBandwidth float64) bool {
	if minBandwidth <= 0 {
		return true
	}
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.Edge(path[i], path[i+1])
		if !ok || e.Bandwidth < minBandwidth {
			return false
		}
	}
	return true
}

func pathKey(path []int) string {
	b := make([]byte, 0, len(path)*5)
	for _, n := range path {
		b = append(b, byte(n), byte(n>>8), byte(n>>16), byte(n>>24), ',')
	}
	return string(b)
}
