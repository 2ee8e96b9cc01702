package benchmark

import (
	"math/rand"

	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/pathutil"
)

// ParetoFrontier draws up to nSamples distinct simple S-D paths — half from
// KCheapestSimplePaths under the hop-count scheme, the rest from guided and
// uniform random walks for topological diversity — evaluates each with the
// metric kernel, and returns the non-dominated subset per
// metrics.Dominates. seed makes the walk-based half of the sample
// reproducible; the k-shortest half is already deterministic.
func ParetoFrontier(g *netgraph.Graph, source, dest int, minBandwidth float64, nSamples int, seed int64) []metrics.PathMetrics {
	if nSamples <= 0 {
		nSamples = 1
	}

	candidates := samplePaths(g, source, dest, minBandwidth, nSamples, seed)
	if len(candidates) == 0 {
		return nil
	}

	all := make([]metrics.PathMetrics, 0, len(candidates))
	for _, path := range candidates {
		m, _, failure := metrics.Evaluate(g, path, metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}, minBandwidth)
		if failure != metrics.FailureNone {
			continue
		}
		all = append(all, m)
	}

	var frontier []metrics.PathMetrics
	for i, candidate := range all {
		dominated := false
		for j, other := range all {
			if i == j {
				continue
			}
			if metrics.Dominates(other, candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidate)
		}
	}
	return frontier
}

func samplePaths(g *netgraph.Graph, source, dest int, minBandwidth float64, nSamples int, seed int64) [][]int {
	seen := make(map[string]bool)
	var out [][]int

	kHalf := nSamples/2 + 1
	for _, sp := range KCheapestSimplePaths(g, source, dest, minBandwidth, kHalf, pathutil.WeightHops) {
		key := pathKey(sp.Nodes)
		if !seen[key] {
			seen[key] = true
			out = append(out, sp.Nodes)
		}
	}

	_, shortestLen, ok := pathutil.Dijkstra(g, source, dest, pathutil.WeightHops)
	expected := 4
	if ok {
		expected = int(shortestLen) + 1
	}
	maxLen := pathutil.MaxWalkLength(g.NumNodes(), expected)

	rng := rand.New(rand.NewSource(seed))
	attempts := 0
	for len(out) < nSamples && attempts < nSamples*20 {
		attempts++
		var path []int
		var walkOK bool
		if attempts%2 == 0 {
			path, walkOK = pathutil.GuidedWalk(g, source, dest, maxLen, rng)
		} else {
			path, walkOK = randomWalk(g, source, dest, maxLen, rng)
		}
		if !walkOK {
			continue
		}
		key := pathKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, path)
	}

	return out
}

func randomWalk(g *netgraph.Graph, source, dest int, maxLen int, rng *rand.Rand) ([]int, bool) {
	visited := map[int]bool{source: true}
	path := []int{source}
	cur := source
	for len(path) < maxLen {
		if cur == dest {
			return path, true
		}
		next, ok := pathutil.RandomNeighbor(g, cur, visited, rng)
		if !ok {
			return path, false
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	return path, cur == dest
}

func pathKey(path []int) string {
	b := make([]byte, 0, len(path)*4)
	for _, v := range path {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(b)
}
