package optimize

import (
	"math"
	"math/rand"

	"qosrouting/metrics"
	"qosrouting/netgraph"
)

// qTable is Q: V x V -> R, keyed by (state, action) node id pairs and
// implicitly zero-initialized on first read, per §4.7/§4.8.
type qTable map[[2]int]float64

func (q qTable) get(s, a int) float64    { return q[[2]int{s, a}] }
func (q qTable) set(s, a int, v float64) { q[[2]int{s, a}] = v }

// edgeReward computes the per-step reward for moving s -> next along an
// edge, per §4.7: a negated weighted sum of per-edge normalized delay,
// reliability cost and resource cost, plus a terminal bonus for reaching
// dest. The Q-learning and SARSA loops add deadEndPenalty on top when the
// step leads into a node with no allowed action.
func edgeReward(e netgraph.Edge, w metrics.Weights, reachedDest bool) float64 {
	normDelay := math.Min(e.Delay/15.0, 1.0)
	normRel := math.Min((1-e.Reliability)*20.0, 1.0)
	normRes := math.Min((1000.0/e.Bandwidth)/10.0, 1.0)

	r := -(w.Delay*normDelay + w.Reliability*normRel + w.Resource*normRes)
	if reachedDest {
		r += 100
	}
	return r
}

const deadEndPenalty = -50.0

// rlAllowedActions returns neighbors of s that meet the bandwidth floor and
// have not already been visited this episode, discouraging cycles.
func rlAllowedActions(g *netgraph.Graph, s int, bw float64, visited map[int]bool) []int {
	return feasibleNeighbors(g, s, bw, visited)
}

// epsilonGreedyAction picks the greedy action (max Q(s,.) among allowed)
// with probability 1-eps, else a uniformly random allowed action.
func epsilonGreedyAction(q qTable, s int, allowed []int, eps float64, rng *rand.Rand) int {
	if rng.Float64() < eps {
		return allowed[rng.Intn(len(allowed))]
	}
	best := allowed[0]
	bestQ := q.get(s, best)
	for _, a := range allowed[1:] {
		if v := q.get(s, a); v > bestQ {
			bestQ = v
			best = a
		}
	}
	return best
}

func maxQ(q qTable, s int, allowed []int) float64 {
	if len(allowed) == 0 {
		return 0
	}
	best := q.get(s, allowed[0])
	for _, a := range allowed[1:] {
		if v := q.get(s, a); v > best {
			best = v
		}
	}
	return best
}

// greedyRolloutPolicy walks the fully-greedy policy from source to dest,
// refusing to revisit a node. ok is false if it dead-ends or exceeds
// maxSteps before reaching dest.
func greedyRolloutPolicy(g *netgraph.Graph, q qTable, source, dest int, bw float64, maxSteps int) ([]int, bool) {
	visited := map[int]bool{source: true}
	path := []int{source}
	cur := source

	for len(path) <= maxSteps {
		if cur == dest {
			return path, true
		}
		allowed := rlAllowedActions(g, cur, bw, visited)
		if len(allowed) == 0 {
			return nil, false
		}
		best := allowed[0]
		bestQ := q.get(cur, best)
		for _, a := range allowed[1:] {
			if v := q.get(cur, a); v > bestQ {
				bestQ = v
				best = a
			}
		}
		visited[best] = true
		path = append(path, best)
		cur = best
	}
	return nil, false
}

func decayEpsilon(eps float64) float64 {
	next := eps * 0.995
	if next < 0.01 {
		return 0.01
	}
	return next
}
