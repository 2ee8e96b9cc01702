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
	if err := RegisterGlobal(&GeneticAlgorithm{}); err != nil {
		panic(err)
	}
}

// GeneticAlgorithm implements §4.3: a population of candidate paths evolved
// by tournament selection, edge-based crossover, and diversity-adaptive
// mutation.
type GeneticAlgorithm struct{}

func (GeneticAlgorithm) Name() string { return "ga" }

func (GeneticAlgorithm) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"generations":        500,
		"mutation_rate":      0.12,
		"crossover_rate":     0.8,
		"tournament_size":    5,
		"elitism_fraction":   0.08,
		"stagnation_window":  20,
		"stagnation_epsilon": 1e-4,
		"diversity_pairs":    30,
	}
}

func (ga GeneticAlgorithm) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(ga.DefaultParams(), params)
	generations := intParam(p, "generations", 500)
	mu0 := floatParam(p, "mutation_rate", 0.12)
	crossoverRate := floatParam(p, "crossover_rate", 0.8)
	tournamentK := intParam(p, "tournament_size", 5)
	elitismFrac := floatParam(p, "elitism_fraction", 0.08)
	stagnationWindow := intParam(p, "stagnation_window", 20)
	stagnationEps := floatParam(p, "stagnation_epsilon", 1e-4)
	diversityPairs := intParam(p, "diversity_pairs", 30)

	g := req.Graph
	nPop := populationSize(g.NumNodes())
	rng := rand.New(rand.NewSource(req.Seed))

	pop := initializePopulation(g, req.Source, req.Destination, req.Bandwidth, nPop, rng)
	if len(pop) == 0 {
		return Result{Failure: FailureNoPath}
	}

	costs := make([]float64, len(pop))
	evalPop := func() {
		for i, ind := range pop {
			_, c := evaluate(g, ind, req.Weights, req.Bandwidth)
			costs[i] = c
		}
	}
	evalPop()

	bestIdx := argmin(costs)
	best := cloneIntSlice(pop[bestIdx])
	bestCost := costs[bestIdx]
	var history []float64
	stagnantFor := 0
	elites := int(math.Floor(elitismFrac * float64(nPop)))

	evaluations := len(pop)

	for generation := 0; generation < generations; generation++ {
		select {
		case <-ctx.Done():
			if math.IsInf(bestCost, 1) {
				return Result{Failure: FailureTimeout, Iterations: generation, Evaluations: evaluations, History: history}
			}
			m, _ := evaluate(g, best, req.Weights, req.Bandwidth)
			return Result{Path: best, Cost: bestCost, Metrics: m, Iterations: generation, Evaluations: evaluations, History: history}
		default:
		}

		diversity := populationDiversity(pop, diversityPairs, rng)
		mu := mu0
		if diversity < 0.10 {
			mu = math.Min(0.30, mu0*2.5)
		}

		order := argsort(costs)
		nextPop := make([][]int, 0, nPop)
		for i := 0; i < elites && i < len(order); i++ {
			nextPop = append(nextPop, cloneIntSlice(pop[order[i]]))
		}

		genSeed := DeriveSeed(req.Seed, generation, 0)
		genRNG := rand.New(rand.NewSource(genSeed))

		for len(nextPop) < nPop {
			p1 := tournamentSelect(pop, costs, tournamentK, genRNG)
			p2 := tournamentSelect(pop, costs, tournamentK, genRNG)

			var c1, c2 []int
			if genRNG.Float64() < crossoverRate {
				c1, c2 = edgeCrossover(p1, p2, genRNG)
			} else {
				c1, c2 = cloneIntSlice(p1), cloneIntSlice(p2)
			}

			c1 = mutate(g, c1, req.Bandwidth, diversity, mu, genRNG)
			nextPop = append(nextPop, c1)
			if len(nextPop) < nPop {
				c2 = mutate(g, c2, req.Bandwidth, diversity, mu, genRNG)
				nextPop = append(nextPop, c2)
			}
		}
		pop = nextPop

		evalPop()
		evaluations += len(pop)
		genBestIdx := argmin(costs)
		if costs[genBestIdx] < bestCost-stagnationEps {
			bestCost = costs[genBestIdx]
			best = cloneIntSlice(pop[genBestIdx])
			stagnantFor = 0
		} else {
			stagnantFor++
		}
		history = append(history, bestCost)

		if req.Progress != nil {
			safeProgress(req.Progress, generation, bestCost)
		}

		if stagnantFor >= stagnationWindow {
			break
		}
	}

	if math.IsInf(bestCost, 1) {
		return Result{Failure: FailureBandwidthInsufficient, Iterations: len(history), Evaluations: evaluations, History: history}
	}

	m, _ := evaluate(g, best, req.Weights, req.Bandwidth)
	return Result{Path: best, Cost: bestCost, Metrics: m, Iterations: len(history), Evaluations: evaluations, History: history}
}

func evaluate(g *netgraph.Graph, path []int, w metrics.Weights, b float64) (metrics.PathMetrics, float64) {
	m, cost, _ := metrics.Evaluate(g, path, w, b)
	return m, cost
}

func mergeParams(defaults, overrides map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func safeProgress(fn ProgressFunc, iteration int, bestCost float64) {
	defer func() { recover() }()
	fn(iteration, bestCost)
}

func argmin(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[best] {
			best = i
		}
	}
	return best
}

// argsort returns indices that would sort xs ascending (insertion sort;
// population sizes here are in the low hundreds, so O(n^2) is negligible
// next to the fitness evaluations it follows).
func argsort(xs []float64) []int {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && xs[idx[j-1]] > xs[idx[j]]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	return idx
}

func tournamentSelect(pop [][]int, costs []float64, k int, rng *rand.Rand) []int {
	bestIdx := rng.Intn(len(pop))
	for i := 1; i < k; i++ {
		candidate := rng.Intn(len(pop))
		if costs[candidate] < costs[bestIdx] {
			bestIdx = candidate
		}
	}
	return pop[bestIdx]
}

// initializePopulation seeds the population per §4.3: hop/delay/reliability
// shortest paths, then guided walks up to half the population, then random
// walks to fill the remainder. Paths violating the bandwidth floor are
// rejected at the source.
func initializePopulation(g *netgraph.Graph, source, dest int, bw float64, nPop int, rng *rand.Rand) [][]int {
	var pop [][]int
	add := func(path []int, ok bool) {
		if ok && isSimplePath(path) && metrics.MinBandwidth(g, path) >= bw {
			pop = append(pop, path)
		}
	}

	if path, _, ok := pathutil.CachedShortestPath(g, source, dest, pathutil.WeightHops); ok {
		add(path, true)
	}
	if path, _, ok := pathutil.CachedShortestPath(g, source, dest, pathutil.WeightDelay); ok {
		add(path, true)
	}
	if path, _, ok := pathutil.CachedShortestPath(g, source, dest, pathutil.WeightNegLogReliability); ok {
		add(path, true)
	}

	expected := expectedShortestPathLen(g, source, dest)
	maxLen := pathutil.MaxWalkLength(g.NumNodes(), expected)

	guidedTarget := nPop / 2
	attempts := 0
	maxAttempts := nPop * 20
	for len(pop) < guidedTarget && attempts < maxAttempts {
		attempts++
		path, ok := pathutil.GuidedWalk(g, source, dest, maxLen, rng)
		add(path, ok)
	}
	for len(pop) < nPop && attempts < maxAttempts {
		attempts++
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
		add(path, path[len(path)-1] == dest)
	}

	return pop
}

// edgeCrossover implements §4.3's edge-based crossover: splice at a
// uniformly chosen internal node common to both parents. If no common
// internal node exists, or the spliced children are not simple, the
// parents pass through unchanged.
func edgeCrossover(p1, p2 []int, rng *rand.Rand) (child1, child2 []int) {
	common := commonInternalNodes(p1, p2)
	if len(common) == 0 {
		return cloneIntSlice(p1), cloneIntSlice(p2)
	}
	c := common[rng.Intn(len(common))]
	i1 := indexOf(p1, c)
	i2 := indexOf(p2, c)

	child1 = append(cloneIntSlice(p1[:i1]), p2[i2:]...)
	child2 = append(cloneIntSlice(p2[:i2]), p1[i1:]...)

	if !isSimplePath(child1) || !isSimplePath(child2) {
		return cloneIntSlice(p1), cloneIntSlice(p2)
	}
	return child1, child2
}

func commonInternalNodes(p1, p2 []int) []int {
	if len(p1) < 2 || len(p2) < 2 {
		return nil
	}
	set1 := make(map[int]bool, len(p1)-2)
	for i := 1; i < len(p1)-1; i++ {
		set1[p1[i]] = true
	}
	var common []int
	for i := 1; i < len(p2)-1; i++ {
		if set1[p2[i]] {
			common = append(common, p2[i])
		}
	}
	return common
}

func indexOf(path []int, node int) int {
	for i, n := range path {
		if n == node {
			return i
		}
	}
	return -1
}

// mutate applies §4.3's diversity-adaptive mutation operator, rejecting any
// result that is not a valid simple bandwidth-feasible path (returning the
// original individual unchanged in that case).
func mutate(g *netgraph.Graph, path []int, bw, diversity, mu float64, rng *rand.Rand) []int {
	if rng.Float64() >= mu || len(path) < 3 {
		return path
	}

	var candidate []int
	switch {
	case diversity < 0.05:
		candidate = segmentReplacementMutation(g, path, bw, rng)
	case diversity < 0.15:
		candidate = nodeInsertionMutation(g, path, bw, rng)
	default:
		candidate = nodeReplacementMutation(g, path, bw, rng)
	}

	if candidate == nil || !isSimplePath(candidate) || metrics.MinBandwidth(g, candidate) < bw {
		return path
	}
	return candidate
}

func segmentReplacementMutation(g *netgraph.Graph, path []int, bw float64, rng *rand.Rand) []int {
	if len(path) < 2 {
		return nil
	}
	i := rng.Intn(len(path) - 1)
	j := i + 1 + rng.Intn(len(path)-i-1)

	expected := j - i
	maxLen := pathutil.MaxWalkLength(g.NumNodes(), expected)
	segment, ok := pathutil.GuidedWalk(g, path[i], path[j], maxLen, rng)
	if !ok {
		return nil
	}
	out := append(cloneIntSlice(path[:i]), segment...)
	out = append(out, path[j+1:]...)
	return out
}

func nodeInsertionMutation(g *netgraph.Graph, path []int, bw float64, rng *rand.Rand) []int {
	if len(path) < 2 {
		return nil
	}
	i := rng.Intn(len(path) - 1)
	node, ok := commonNeighbor(g, path[i], path[i+1], bw, rng)
	if !ok {
		return nil
	}
	out := cloneIntSlice(path[:i+1])
	out = append(out, node)
	out = append(out, path[i+1:]...)
	return out
}

func nodeReplacementMutation(g *netgraph.Graph, path []int, bw float64, rng *rand.Rand) []int {
	if len(path) < 3 {
		return nil
	}
	i := 1 + rng.Intn(len(path)-2)
	node, ok := commonNeighbor(g, path[i-1], path[i+1], bw, rng)
	if !ok || node == path[i] {
		return nil
	}
	out := cloneIntSlice(path)
	out[i] = node
	return out
}
