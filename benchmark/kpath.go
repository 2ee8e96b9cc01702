// Package benchmark provides the k-shortest-path oracle and Pareto-frontier
// analysis used to gauge how close an optimizer's result is to the best
// achievable path, independent of any of the six optimizers.
package benchmark

import (
	"qosrouting/netgraph"
	"qosrouting/pathutil"
)

// KCheapestSimplePaths wraps pathutil.KSimplePaths as a standalone benchmark
// oracle: up to k loopless S-D paths in non-decreasing order of the given
// weight scheme, with edges below minBandwidth excluded as they are found.
func KCheapestSimplePaths(g *netgraph.Graph, source, dest int, minBandwidth float64, k int, scheme pathutil.WeightScheme) []pathutil.SimplePath {
	return pathutil.KSimplePaths(g, source, dest, k, scheme, minBandwidth)
}

// OptimalityGap returns (algoCost - benchmarkCost) / benchmarkCost, the
// fractional distance of an algorithm's result from the benchmark oracle's
// best path. It is 0 when algoCost matches benchmarkCost exactly, and
// defined as 0 (rather than dividing by zero) in the degenerate case where
// the benchmark itself cost nothing.
func OptimalityGap(algoCost, benchmarkCost float64) float64 {
	if benchmarkCost == 0 {
		return 0
	}
	return (algoCost - benchmarkCost) / benchmarkCost
}
