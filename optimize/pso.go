package optimize

import (
	"context"
	"math"
	"math/rand"

	"qosrouting/netgraph"
)

func init() {
	if err := RegisterGlobal(&ParticleSwarm{}); err != nil {
		panic(err)
	}
}

const psoEpsilon = 0.01

// ParticleSwarm implements §4.5: paths are discrete, so a particle's
// "velocity" is reinterpreted as a probability blend over next-hop choices,
// biased by the particle's own previous path (inertia), its personal best,
// and the swarm's global best.
type ParticleSwarm struct{}

func (ParticleSwarm) Name() string { return "pso" }

func (ParticleSwarm) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"n_particles":       30,
		"n_iterations":      100,
		"inertia":           0.7,
		"c1":                1.5,
		"c2":                1.5,
		"stagnation_window": 15,
	}
}

type particle struct {
	path      []int
	cost      float64
	pbest     []int
	pbestCost float64
}

func (pso ParticleSwarm) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(pso.DefaultParams(), params)
	nParticles := intParam(p, "n_particles", 30)
	nIter := intParam(p, "n_iterations", 100)
	w := floatParam(p, "inertia", 0.7)
	c1 := floatParam(p, "c1", 1.5)
	c2 := floatParam(p, "c2", 1.5)
	stagnationWindow := intParam(p, "stagnation_window", 15)

	g := req.Graph
	maxHops := 2 * g.NumNodes()

	swarm := make([]*particle, 0, nParticles)
	var gbest []int
	gbestCost := math.Inf(1)
	evaluations := 0

	for i := 0; i < nParticles; i++ {
		rng := rand.New(rand.NewSource(DeriveSeed(req.Seed, 0, i)))
		path, ok := constructParticlePath(g, req.Source, req.Destination, req.Bandwidth, nil, nil, nil, w, c1, c2, maxHops, rng)
		if !ok {
			continue
		}
		_, cost := evaluate(g, path, req.Weights, req.Bandwidth)
		evaluations++
		pt := &particle{path: path, cost: cost, pbest: cloneIntSlice(path), pbestCost: cost}
		swarm = append(swarm, pt)
		if cost < gbestCost {
			gbestCost = cost
			gbest = cloneIntSlice(path)
		}
	}

	if len(swarm) == 0 {
		return Result{Failure: FailureNoPath}
	}

	var history []float64
	stagnantFor := 0

	for iter := 0; iter < nIter; iter++ {
		select {
		case <-ctx.Done():
			return psoResult(g, req, gbest, gbestCost, iter, evaluations, history)
		default:
		}

		improved := false
		for i, pt := range swarm {
			rng := rand.New(rand.NewSource(DeriveSeed(req.Seed, iter+1, i)))
			path, ok := constructParticlePath(g, req.Source, req.Destination, req.Bandwidth, pt.path, pt.pbest, gbest, w, c1, c2, maxHops, rng)
			if !ok {
				continue
			}
			_, cost := evaluate(g, path, req.Weights, req.Bandwidth)
			evaluations++
			pt.path, pt.cost = path, cost
			if cost < pt.pbestCost {
				pt.pbestCost = cost
				pt.pbest = cloneIntSlice(path)
			}
			if cost < gbestCost {
				gbestCost = cost
				gbest = cloneIntSlice(path)
				improved = true
			}
		}

		history = append(history, gbestCost)
		if req.Progress != nil {
			safeProgress(req.Progress, iter, gbestCost)
		}

		if improved {
			stagnantFor = 0
		} else {
			stagnantFor++
		}
		if stagnantFor >= stagnationWindow {
			break
		}
	}

	return psoResult(g, req, gbest, gbestCost, len(history), evaluations, history)
}

func psoResult(g *netgraph.Graph, req Request, gbest []int, gbestCost float64, iterations, evaluations int, history []float64) Result {
	if gbest == nil {
		return Result{Failure: FailureNoPath, Iterations: iterations, Evaluations: evaluations, History: history}
	}
	m, _ := evaluate(g, gbest, req.Weights, req.Bandwidth)
	return Result{Path: gbest, Cost: gbestCost, Metrics: m, Iterations: iterations, Evaluations: evaluations, History: history}
}

// nextHopAfter returns the node following the first occurrence of cur in
// path, or -1 if cur is absent or is path's last node.
func nextHopAfter(path []int, cur int) int {
	for i, n := range path {
		if n == cur && i < len(path)-1 {
			return path[i+1]
		}
	}
	return -1
}

// constructParticlePath reconstructs a path from source to dest by, at each
// step, choosing the next hop with probability proportional to
// w*p_inertia(v) + c1*r1*p_pbest(v) + c2*r2*p_gbest(v) among bandwidth-
// feasible unvisited neighbors, per §4.5. Any of prevPath/pbest/gbest may
// be nil (first iteration has no history to draw on).
func constructParticlePath(g *netgraph.Graph, source, dest int, bw float64, prevPath, pbest, gbest []int, w, c1, c2 float64, maxHops int, rng *rand.Rand) ([]int, bool) {
	visited := map[int]bool{source: true}
	path := []int{source}
	cur := source

	for len(path) <= maxHops {
		if cur == dest {
			return path, true
		}
		candidates := feasibleNeighbors(g, cur, bw, visited)
		if len(candidates) == 0 {
			return nil, false
		}

		inertiaHop := nextHopAfter(prevPath, cur)
		pbestHop := nextHopAfter(pbest, cur)
		gbestHop := nextHopAfter(gbest, cur)

		r1, r2 := rng.Float64(), rng.Float64()
		weights := make([]float64, len(candidates))
		for i, v := range candidates {
			var score float64
			if v == inertiaHop {
				score += w
			} else {
				score += w * psoEpsilon
			}
			if v == pbestHop {
				score += c1 * r1
			} else {
				score += c1 * r1 * psoEpsilon
			}
			if v == gbestHop {
				score += c2 * r2
			} else {
				score += c2 * r2 * psoEpsilon
			}
			weights[i] = score
		}

		choice := NewCumulativeChoice(weights)
		idx := choice.Pick(rng)
		if idx < 0 {
			idx = rng.Intn(len(candidates))
		}
		next := candidates[idx]
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	return nil, false
}
