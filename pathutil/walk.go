package pathutil

import (
	"math/rand"

	"qosrouting/netgraph"
)

const guidedWalkBias = 0.7

// MaxWalkLength bounds a guided walk at min(|V|, 2*expected) per the
// specification, where expected is the caller's estimate of the typical
// shortest-path hop count (e.g. from a prior Dijkstra call).
func MaxWalkLength(numNodes int, expectedShortestPathLen int) int {
	cap := 2 * expectedShortestPathLen
	if numNodes < cap {
		return numNodes
	}
	return cap
}

// GuidedWalk performs a random walk from source toward dest: at each step,
// with probability guidedWalkBias it picks the next hop weighted by
// 1/(1+link_delay) among unvisited neighbors (biasing toward low-delay
// links), and otherwise picks uniformly among unvisited neighbors. The walk
// stops on reaching dest, running out of unvisited neighbors, or holding
// maxLen nodes. It never revisits a node, so the result is always a simple
// path; ok is false if dest was not reached.
func GuidedWalk(g *netgraph.Graph, source, dest int, maxLen int, rng *rand.Rand) (path []int, ok bool) {
	visited := map[int]bool{source: true}
	path = []int{source}
	cur := source

	for len(path) < maxLen {
		if cur == dest {
			return path, true
		}
		neighbors := g.Neighbors(cur)
		var candidates []int
		for _, v := range neighbors {
			if !visited[v] {
				candidates = append(candidates, v)
			}
		}
		if len(candidates) == 0 {
			return path, false
		}

		var next int
		if rng.Float64() < guidedWalkBias {
			next = weightedPick(g, cur, candidates, rng)
		} else {
			next = candidates[rng.Intn(len(candidates))]
		}

		visited[next] = true
		path = append(path, next)
		cur = next
	}

	return path, cur == dest
}

// weightedPick chooses among candidates with probability proportional to
// 1/(1+delay) of the edge (from, candidate), biasing toward low-delay hops.
func weightedPick(g *netgraph.Graph, from int, candidates []int, rng *rand.Rand) int {
	weights := make([]float64, len(candidates))
	var total float64
	for i, v := range candidates {
		e, _ := g.Edge(from, v)
		w := 1.0 / (1.0 + e.Delay)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return candidates[rng.Intn(len(candidates))]
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r <= cum {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
