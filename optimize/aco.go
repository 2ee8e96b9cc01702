package optimize

import (
	"context"
	"math"
	"math/rand"

	"qosrouting/netgraph"
)

func init() {
	if err := RegisterGlobal(&AntColony{}); err != nil {
		panic(err)
	}
}

const acoEpsilon = 1e-9

// AntColony implements §4.4: pheromone-guided probabilistic construction of
// S-D paths, with evaporation/deposit updates and an optional MMAS clamp.
type AntColony struct{}

func (AntColony) Name() string { return "aco" }

func (AntColony) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":             1.0,
		"beta":              2.0,
		"evaporation":       0.5,
		"deposit":           100.0,
		"n_ants":            50,
		"n_iterations":      100,
		"stagnation_window": 15,
		"mmas":              false,
	}
}

type pheromoneKey struct{ u, v int }

func (ac AntColony) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(ac.DefaultParams(), params)
	alpha := floatParam(p, "alpha", 1.0)
	beta := floatParam(p, "beta", 2.0)
	rho := floatParam(p, "evaporation", 0.5)
	Q := floatParam(p, "deposit", 100.0)
	nAnts := intParam(p, "n_ants", 50)
	nIter := intParam(p, "n_iterations", 100)
	stagnationWindow := intParam(p, "stagnation_window", 15)
	mmas, _ := p["mmas"].(bool)

	g := req.Graph
	maxHops := 2 * g.NumNodes()

	pheromone := make(map[pheromoneKey]float64)
	for _, u := range g.NodeIDs() {
		for _, v := range g.Neighbors(u) {
			pheromone[pheromoneKey{u, v}] = 1.0
		}
	}

	var best []int
	bestCost := math.Inf(1)
	var history []float64
	stagnantFor := 0
	evaluations := 0

	alphaInit, betaInit := alpha, beta

	for iter := 0; iter < nIter; iter++ {
		select {
		case <-ctx.Done():
			if best == nil {
				return Result{Failure: FailureTimeout, Iterations: iter, Evaluations: evaluations, History: history}
			}
			return acoResult(g, req, best, bestCost, iter, evaluations, history)
		default:
		}

		// linear exploration-to-exploitation schedule: alpha grows, beta shrinks.
		frac := float64(iter) / math.Max(1, float64(nIter-1))
		curAlpha := alphaInit + frac*1.0
		curBeta := betaInit * (1.0 - 0.5*frac)

		type antResult struct {
			path []int
			cost float64
			ok   bool
		}
		results := make([]antResult, nAnts)

		for a := 0; a < nAnts; a++ {
			antRNG := rand.New(rand.NewSource(DeriveSeed(req.Seed, iter, a)))
			path, ok := constructAntPath(g, req.Source, req.Destination, req.Bandwidth, pheromone, curAlpha, curBeta, maxHops, antRNG)
			evaluations++
			if !ok {
				results[a] = antResult{ok: false}
				continue
			}
			_, cost := evaluate(g, path, req.Weights, req.Bandwidth)
			results[a] = antResult{path: path, cost: cost, ok: !math.IsInf(cost, 1)}
		}

		for k := range pheromone {
			pheromone[k] *= 1 - rho
		}

		iterBestCost := math.Inf(1)
		for _, r := range results {
			if !r.ok {
				continue
			}
			deposit := Q / r.cost
			for i := 0; i < len(r.path)-1; i++ {
				pheromone[pheromoneKey{r.path[i], r.path[i+1]}] += deposit
				pheromone[pheromoneKey{r.path[i+1], r.path[i]}] += deposit
			}
			if r.cost < iterBestCost {
				iterBestCost = r.cost
			}
			if r.cost < bestCost {
				bestCost = r.cost
				best = cloneIntSlice(r.path)
			}
		}

		if mmas && !math.IsInf(bestCost, 1) {
			tauMax := 1.0 / (rho * bestCost)
			tauMin := tauMax / (2.0 * float64(g.NumNodes()))
			for k, v := range pheromone {
				if v > tauMax {
					pheromone[k] = tauMax
				} else if v < tauMin {
					pheromone[k] = tauMin
				}
			}
		}

		history = append(history, bestCost)
		if req.Progress != nil {
			safeProgress(req.Progress, iter, bestCost)
		}

		if math.IsInf(iterBestCost, 1) || iterBestCost >= bestCost-1e-9 {
			stagnantFor++
		} else {
			stagnantFor = 0
		}
		if stagnantFor >= stagnationWindow {
			break
		}
	}

	return acoResult(g, req, best, bestCost, len(history), evaluations, history)
}

func acoResult(g *netgraph.Graph, req Request, best []int, bestCost float64, iterations, evaluations int, history []float64) Result {
	if best == nil {
		return Result{Failure: FailureNoPath, Iterations: iterations, Evaluations: evaluations, History: history}
	}
	m, _ := evaluate(g, best, req.Weights, req.Bandwidth)
	return Result{Path: best, Cost: bestCost, Metrics: m, Iterations: iterations, Evaluations: evaluations, History: history}
}

// constructAntPath builds one candidate path by repeatedly sampling the
// next hop with probability proportional to tau^alpha * eta^beta among
// bandwidth-feasible, unvisited neighbors, per §4.4.
func constructAntPath(g *netgraph.Graph, source, dest int, bw float64, pheromone map[pheromoneKey]float64, alpha, beta float64, maxHops int, rng *rand.Rand) ([]int, bool) {
	visited := map[int]bool{source: true}
	path := []int{source}
	cur := source

	for len(path) <= maxHops {
		if cur == dest {
			return path, true
		}
		allowed := feasibleNeighbors(g, cur, bw, visited)
		if len(allowed) == 0 {
			return nil, false
		}

		weights := make([]float64, len(allowed))
		for i, v := range allowed {
			e, _ := g.Edge(cur, v)
			tau := pheromone[pheromoneKey{cur, v}]
			if tau <= 0 {
				tau = acoEpsilon
			}
			eta := 1.0 / (e.Delay + acoEpsilon)
			weights[i] = math.Pow(tau, alpha) * math.Pow(eta, beta)
		}

		choice := NewCumulativeChoice(weights)
		idx := choice.Pick(rng)
		if idx < 0 {
			return nil, false
		}
		next := allowed[idx]
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	return nil, false
}
