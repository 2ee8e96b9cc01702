package optimize

import (
	"context"
	"math"
	"math/rand"
)

func init() {
	if err := RegisterGlobal(&SARSA{}); err != nil {
		panic(err)
	}
}

// SARSA implements §4.8: identical scaffolding to QLearning, but on-policy —
// the TD target uses Q(s', a') for the action a' actually chosen by the
// epsilon-greedy policy at s', rather than max_a' Q(s', a').
type SARSA struct{}

func (SARSA) Name() string { return "sarsa" }

// DefaultParams lists epsilon_min and epsilon_decay, but Optimize does not
// read them: decayEpsilon always applies a 0.995 factor and a 0.01 floor.
func (SARSA) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"episodes":      5000,
		"learning_rate": 0.1,
		"discount":      0.95,
		"epsilon_init":  1.0,
		"epsilon_min":   0.01,
		"epsilon_decay": 0.995,
	}
}

func (s SARSA) Optimize(ctx context.Context, req Request, params map[string]interface{}) Result {
	if res, ok := validateRequest(req); !ok {
		return res
	}

	p := mergeParams(s.DefaultParams(), params)
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

		allowed := rlAllowedActions(g, cur, req.Bandwidth, visited)
		if len(allowed) == 0 {
			eps = decayEpsilon(eps)
			history = append(history, bestEpisodeCost)
			continue
		}
		action := epsilonGreedyAction(q, cur, allowed, eps, rng)

		for step := 0; step < maxSteps; step++ {
			e, _ := g.Edge(cur, action)
			reachedDest := action == req.Destination
			r := edgeReward(e, req.Weights, reachedDest)

			visited[action] = true
			path = append(path, action)
			next := action

			var nextAction int
			var nextQ float64
			hasNextAction := false
			if !reachedDest {
				nextAllowed := rlAllowedActions(g, next, req.Bandwidth, visited)
				if len(nextAllowed) > 0 {
					nextAction = epsilonGreedyAction(q, next, nextAllowed, eps, rng)
					nextQ = q.get(next, nextAction)
					hasNextAction = true
				} else {
					r += deadEndPenalty
				}
			}

			oldQ := q.get(cur, action)
			q.set(cur, action, oldQ+eta*(r+gamma*nextQ-oldQ))

			if reachedDest {
				_, cost := evaluate(g, path, req.Weights, req.Bandwidth)
				if cost < bestEpisodeCost {
					bestEpisodeCost = cost
					bestEpisodePath = cloneIntSlice(path)
				}
				break
			}
			if !hasNextAction {
				break // dead end: no on-policy action available at s'
			}

			cur = next
			action = nextAction
		}

		eps = decayEpsilon(eps)
		history = append(history, bestEpisodeCost)
		if req.Progress != nil && episode%50 == 0 {
			safeProgress(req.Progress, episode, bestEpisodeCost)
		}
	}

	return qlResult(g, req, q, bestEpisodePath, bestEpisodeCost, episodes, history, maxSteps, false)
}
