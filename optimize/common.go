package optimize

import (
	"math/rand"

	"qosrouting/netgraph"
	"qosrouting/pathutil"
)

func isSimplePath(path []int) bool {
	seen := make(map[int]bool, len(path))
	for _, n := range path {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// feasibleNeighbors returns v's neighbors whose incident edge meets the
// bandwidth floor b and are not already in exclude.
func feasibleNeighbors(g *netgraph.Graph, v int, b float64, exclude map[int]bool) []int {
	var out []int
	for _, u := range g.Neighbors(v) {
		if exclude[u] {
			continue
		}
		e, ok := g.Edge(v, u)
		if !ok || (b > 0 && e.Bandwidth < b) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// commonNeighbor returns a neighbor shared by both a and b (excluding a and
// b themselves) whose incident edges on both sides meet the bandwidth
// floor, or ok=false if none exists. When several qualify, one is picked
// uniformly at random via rng for variety across calls.
func commonNeighbor(g *netgraph.Graph, a, b int, bw float64, rng *rand.Rand) (int, bool) {
	na := g.Neighbors(a)
	nbSet := make(map[int]bool, len(na))
	for _, v := range na {
		nbSet[v] = true
	}

	var candidates []int
	for _, v := range g.Neighbors(b) {
		if v == a || v == b || !nbSet[v] {
			continue
		}
		ea, okA := g.Edge(a, v)
		eb, okB := g.Edge(b, v)
		if !okA || !okB {
			continue
		}
		if bw > 0 && (ea.Bandwidth < bw || eb.Bandwidth < bw) {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// jaccardSimilarity compares two paths as node sets.
func jaccardSimilarity(a, b []int) float64 {
	setA := make(map[int]bool, len(a))
	for _, n := range a {
		setA[n] = true
	}
	setB := make(map[int]bool, len(b))
	for _, n := range b {
		setB[n] = true
	}

	var intersection, union int
	seen := make(map[int]bool, len(setA)+len(setB))
	for n := range setA {
		seen[n] = true
		if setB[n] {
			intersection++
		}
	}
	for n := range setB {
		seen[n] = true
	}
	union = len(seen)
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// populationDiversity samples up to maxPairs random pairs from pop and
// returns 1 minus their average Jaccard similarity, per §4.3.
func populationDiversity(pop [][]int, maxPairs int, rng *rand.Rand) float64 {
	if len(pop) < 2 {
		return 1.0
	}
	var total float64
	n := maxPairs
	for i := 0; i < n; i++ {
		a := pop[rng.Intn(len(pop))]
		b := pop[rng.Intn(len(pop))]
		total += jaccardSimilarity(a, b)
	}
	return 1.0 - total/float64(n)
}

// populationSize implements the |V|-scaled default from §4.3.
func populationSize(numNodes int) int {
	switch {
	case numNodes < 100:
		return 200
	case numNodes < 500:
		return 260
	default:
		return 500
	}
}

// expectedShortestPathLen estimates E[shortest_path_length] for walk
// capping, using the hop-count shortest path when one exists, else a
// conservative guess of numNodes/2.
func expectedShortestPathLen(g *netgraph.Graph, source, dest int) int {
	path, _, ok := pathutil.CachedShortestPath(g, source, dest, pathutil.WeightHops)
	if !ok {
		n := g.NumNodes() / 2
		if n < 1 {
			n = 1
		}
		return n
	}
	return len(path) - 1
}

func cloneIntSlice(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
