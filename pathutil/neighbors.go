package pathutil

import (
	"math/rand"

	"qosrouting/netgraph"
)

// RandomNeighbor returns a uniformly random neighbor of v, excluding any
// node in exclude. ok is false if no eligible neighbor exists.
func RandomNeighbor(g *netgraph.Graph, v int, exclude map[int]bool, rng *rand.Rand) (next int, ok bool) {
	neighbors := g.Neighbors(v)
	var eligible []int
	for _, u := range neighbors {
		if !exclude[u] {
			eligible = append(eligible, u)
		}
	}
	if len(eligible) == 0 {
		return 0, false
	}
	return eligible[rng.Intn(len(eligible))], true
}

// WeightedNeighbor picks among v's neighbors (excluding those in exclude)
// with probability proportional to the caller-supplied weight function,
// e.g. pheromone intensity for ACO or velocity-biased attractiveness for
// PSO. ok is false if no eligible neighbor exists or all weights are
// non-positive.
func WeightedNeighbor(g *netgraph.Graph, v int, exclude map[int]bool, weight func(from, to int) float64, rng *rand.Rand) (next int, ok bool) {
	neighbors := g.Neighbors(v)
	var eligible []int
	var weights []float64
	var total float64
	for _, u := range neighbors {
		if exclude[u] {
			continue
		}
		w := weight(v, u)
		if w <= 0 {
			continue
		}
		eligible = append(eligible, u)
		weights = append(weights, w)
		total += w
	}
	if len(eligible) == 0 || total <= 0 {
		return 0, false
	}

	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r <= cum {
			return eligible[i], true
		}
	}
	return eligible[len(eligible)-1], true
}
