package optimize

import (
	"context"
	"math"
	"math/rand"

	"qosrouting/netgraph"
)

func init() {
	if err := RegisterGlobal(&QLearning{}); err != nil {
		panic(err)
	}
}

// QLearning implements §4.7: off-policy TD control over Q: V x V -> R,
// with an epsilon-greedy behavior policy decaying geometrically, followed
// by a greedy rollout to extract the result path.
type QLearning struct{}

func (QLearning) Name() string { return "ql" }

// DefaultParams lists epsilon_min and epsilon_decay, but Optimize does not
// read them: decayEpsilon always applies a 0.995 factor and a 0.01 floor.
func (QLearning) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"episodes":      5000,
		"learning_rate": 0.1,
		"discount":      0.95,
		"epsilon_init":  1.0,
		"epsilon_min":   0.01,
		"epsilon_decay": 0.995,
	}
}

func (ql QLearning) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(ql.DefaultParams(), params)
	episodes := intParam(p, "episodes", 5000)
	eta := floatParam(p, "learning_rate", 0.1)
	gamma := floatParam(p, "discount", 0.95)
	eps := floatParam(p, "epsilon_init", 1.0)

	g := req.Graph
	maxSteps := 3 * g.NumNodes()

	q := make(qTable)
	var bestEpisodePath []int
	bestEpisodeCost := math.Inf(1)
	var history []float64

	for episode := 0; episode < episodes; episode++ {
		select {
		case <-ctx.Done():
			return qlResult(g, req, q, bestEpisodePath, bestEpisodeCost, episode, history, maxSteps, true)
		default:
		}

		rng := rand.New(rand.NewSource(DeriveSeed(req.Seed, episode, 0)))
		visited := map[int]bool{req.Source: true}
		path := []int{req.Source}
		cur := req.Source

		for step := 0; step < maxSteps; step++ {
			allowed := rlAllowedActions(g, cur, req.Bandwidth, visited)
			if len(allowed) == 0 {
				break // dead end: episode ends without a valid action to update
			}

			action := epsilonGreedyAction(q, cur, allowed, eps, rng)
			e, _ := g.Edge(cur, action)
			reachedDest := action == req.Destination
			r := edgeReward(e, req.Weights, reachedDest)

			visited[action] = true
			path = append(path, action)

			var nextMax float64
			if !reachedDest {
				nextAllowed := rlAllowedActions(g, action, req.Bandwidth, visited)
				if len(nextAllowed) == 0 {
					r += deadEndPenalty
				}
				nextMax = maxQ(q, action, nextAllowed)
			}

			oldQ := q.get(cur, action)
			q.set(cur, action, oldQ+eta*(r+gamma*nextMax-oldQ))

			cur = action
			if reachedDest {
				_, cost := evaluate(g, path, req.Weights, req.Bandwidth)
				if cost < bestEpisodeCost {
					bestEpisodeCost = cost
					bestEpisodePath = cloneIntSlice(path)
				}
				break
			}
		}

		eps = decayEpsilon(eps)
		history = append(history, bestEpisodeCost)
		if req.Progress != nil && episode%50 == 0 {
			safeProgress(req.Progress, episode, bestEpisodeCost)
		}
	}

	return qlResult(g, req, q, bestEpisodePath, bestEpisodeCost, episodes, history, maxSteps, false)
}

// qlResult extracts the greedy-policy path from q, falling back to the best
// episode observed during training if the greedy walk cycles or dead-ends,
// per §4.7. cancelled marks whether training was cut short by ctx, which
// changes the failure classification for a fully-unsuccessful run.
func qlResult(g *netgraph.Graph, req Request, q qTable, bestEpisodePath []int, bestEpisodeCost float64, episodes int, history []float64, maxSteps int, cancelled bool) Result {
	greedyPath, ok := greedyRolloutPolicy(g, q, req.Source, req.Destination, req.Bandwidth, maxSteps)
	if ok {
		_, cost := evaluate(g, greedyPath, req.Weights, req.Bandwidth)
		if !math.IsInf(cost, 1) {
			m, _ := evaluate(g, greedyPath, req.Weights, req.Bandwidth)
			return Result{Path: greedyPath, Cost: cost, Metrics: m, Iterations: episodes, Evaluations: episodes, History: history}
		}
	}

	if bestEpisodePath != nil {
		m, _ := evaluate(g, bestEpisodePath, req.Weights, req.Bandwidth)
		return Result{Path: bestEpisodePath, Cost: bestEpisodeCost, Metrics: m, Iterations: episodes, Evaluations: episodes, History: history}
	}

	if cancelled {
		return Result{Failure: FailureTimeout, Iterations: episodes, Evaluations: episodes, History: history}
	}
	return Result{Failure: FailureNoPath, Iterations: episodes, Evaluations: episodes, History: history}
}
