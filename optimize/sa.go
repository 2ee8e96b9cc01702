package optimize

import (
	"context"
	"math"
	"math/rand"

	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/pathutil"
)

func init() {
	if err := RegisterGlobal(&SimulatedAnnealing{}); err != nil {
		panic(err)
	}
}

// SimulatedAnnealing implements §4.6: a single evolving path perturbed by a
// local neighbor operator, accepted unconditionally on improvement and
// probabilistically otherwise, with geometric cooling.
type SimulatedAnnealing struct{}

func (SimulatedAnnealing) Name() string { return "sa" }

func (SimulatedAnnealing) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"t_init":               1000.0,
		"t_final":              0.01,
		"cooling_factor":       0.995,
		"iterations_per_temp":  10,
		"neighbor_max_retries": 20,
	}
}

func (sa SimulatedAnnealing) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(sa.DefaultParams(), params)
	tInit := floatParam(p, "t_init", 1000.0)
	tFinal := floatParam(p, "t_final", 0.01)
	cooling := floatParam(p, "cooling_factor", 0.995)
	iterPerTemp := intParam(p, "iterations_per_temp", 10)
	maxRetries := intParam(p, "neighbor_max_retries", 20)

	g := req.Graph
	rng := rand.New(rand.NewSource(req.Seed))

	current := initialSAPath(g, req.Source, req.Destination, req.Bandwidth, rng)
	if current == nil {
		return Result{Failure: FailureNoPath}
	}
	_, currentCost := evaluate(g, current, req.Weights, req.Bandwidth)

	best := cloneIntSlice(current)
	bestCost := currentCost
	var history []float64
	evaluations := 1
	iteration := 0

	for T := tInit; T > tFinal; T *= cooling {
		select {
		case <-ctx.Done():
			return saResult(g, req, best, bestCost, iteration, evaluations, history)
		default:
		}

		for step := 0; step < iterPerTemp; step++ {
			iteration++
			neighbor := saNeighbor(g, current, req.Bandwidth, maxRetries, rng)
			if neighbor == nil {
				continue
			}
			_, neighborCost := evaluate(g, neighbor, req.Weights, req.Bandwidth)
			evaluations++

			delta := neighborCost - currentCost
			if delta < 0 || rng.Float64() < math.Exp(-delta/T) {
				current = neighbor
				currentCost = neighborCost
				if currentCost < bestCost {
					bestCost = currentCost
					best = cloneIntSlice(current)
				}
			}
		}

		history = append(history, bestCost)
		if req.Progress != nil {
			safeProgress(req.Progress, iteration, bestCost)
		}
	}

	return saResult(g, req, best, bestCost, iteration, evaluations, history)
}

func saResult(g *netgraph.Graph, req Request, best []int, bestCost float64, iterations, evaluations int, history []float64) Result {
	if math.IsInf(bestCost, 1) {
		return Result{Failure: FailureBandwidthInsufficient, Iterations: iterations, Evaluations: evaluations, History: history}
	}
	m, _ := evaluate(g, best, req.Weights, req.Bandwidth)
	return Result{Path: best, Cost: bestCost, Metrics: m, Iterations: iterations, Evaluations: evaluations, History: history}
}

// initialSAPath starts from the best of a hop-shortest path, a few guided
// walks, and a handful of random walks, per §4.6.
func initialSAPath(g *netgraph.Graph, source, dest int, bw float64, rng *rand.Rand) []int {
	var candidates [][]int

	if path, _, ok := pathutil.CachedShortestPath(g, source, dest, pathutil.WeightHops); ok && metrics.MinBandwidth(g, path) >= bw {
		candidates = append(candidates, path)
	}

	expected := expectedShortestPathLen(g, source, dest)
	maxLen := pathutil.MaxWalkLength(g.NumNodes(), expected)

	for i := 0; i < 5; i++ {
		if path, ok := pathutil.GuidedWalk(g, source, dest, maxLen, rng); ok && metrics.MinBandwidth(g, path) >= bw {
			candidates = append(candidates, path)
		}
	}
	for i := 0; i < 5; i++ {
		visited := map[int]bool{source: true}
		path := []int{source}
		for cur := source; cur != dest && len(path) < maxLen; {
			next, ok := pathutil.RandomNeighbor(g, cur, visited, rng)
			if !ok {
				break
			}
			visited[next] = true
			path = append(path, next)
			cur = next
		}
		if path[len(path)-1] == dest && metrics.MinBandwidth(g, path) >= bw {
			candidates = append(candidates, path)
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	_, bestCost := evaluate(g, best, metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}, bw)
	for _, c := range candidates[1:] {
		_, cost := evaluate(g, c, metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}, bw)
		if cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}

// saNeighbor implements §4.6's local move: replace an internal node with a
// common neighbor of its predecessor and successor. Falls back to node
// insertion, then gives up after maxRetries attempts.
func saNeighbor(g *netgraph.Graph, path []int, bw float64, maxRetries int, rng *rand.Rand) []int {
	if len(path) < 3 {
		return nil
	}
	for attempt := 0; attempt < maxRetries; attempt++ {
		i := 1 + rng.Intn(len(path)-2)
		if node, ok := commonNeighbor(g, path[i-1], path[i+1], bw, rng); ok && node != path[i] {
			out := cloneIntSlice(path)
			out[i] = node
			if isSimplePath(out) {
				return out
			}
			continue
		}
		j := rng.Intn(len(path) - 1)
		if node, ok := commonNeighbor(g, path[j], path[j+1], bw, rng); ok {
			out := cloneIntSlice(path[:j+1])
			out = append(out, node)
			out = append(out, path[j+1:]...)
			if isSimplePath(out) {
				return out
			}
		}
	}
	return nil
}
