// Package metrics implements the single-pass metric and normalized cost
// kernel shared by every optimizer and the experiment harness.
package metrics

import (
	"math"

	"qosrouting/netgraph"
)

// Weights are the three non-negative objective weights; the caller
// guarantees W_d+W_r+W_c = 1 within 1e-6 (checked by Validate).
type Weights struct {
	Delay       float64
	Reliability float64
	Resource    float64
}

const weightSumTolerance = 1e-6

// Validate reports whether the weights are non-negative and sum to one
// within tolerance.
func (w Weights) Validate() bool {
	if w.Delay < 0 || w.Reliability < 0 || w.Resource < 0 {
		return false
	}
	sum := w.Delay + w.Reliability + w.Resource
	return math.Abs(sum-1.0) <= weightSumTolerance
}

// PathMetrics is the raw, unnormalized measurement of a path.
type PathMetrics struct {
	TotalDelay       float64
	TotalReliability float64
	ResourceCost     float64
	MinBandwidth     float64
	Hops             int
}

// FailureCode enumerates why evaluate() could not produce a metric.
type FailureCode string

const (
	FailureNone        FailureCode = ""
	FailureInvalidEdge FailureCode = "INVALID_EDGE"
)

// Evaluate performs the single pass over path required by §4.1: it
// computes PathMetrics and the normalized weighted cost. path must have
// at least two nodes. If any consecutive pair is not an edge in g, the
// cost is +Inf and the failure code is FailureInvalidEdge. If b > 0 and
// the path's minimum bandwidth is below b, cost is also +Inf (the hard
// bandwidth constraint), independent of edge validity.
//
// Evaluate is pure and safe for concurrent use: it only reads g.
func Evaluate(g *netgraph.Graph, path []int, w Weights, b float64) (PathMetrics, float64, FailureCode) {
	var m PathMetrics
	if len(path) < 2 {
		return m, math.Inf(1), FailureInvalidEdge
	}

	m.MinBandwidth = math.Inf(1)
	m.TotalReliability = 1.0
	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]
		e, ok := g.Edge(u, v)
		if !ok {
			return PathMetrics{}, math.Inf(1), FailureInvalidEdge
		}
		m.TotalDelay += e.Delay
		m.TotalReliability *= e.Reliability
		m.ResourceCost += 1000.0 / e.Bandwidth
		if e.Bandwidth < m.MinBandwidth {
			m.MinBandwidth = e.Bandwidth
		}
	}

	// Processing delay and node reliability of internal nodes only
	// (endpoints excluded), per §3.
	for i := 1; i < len(path)-1; i++ {
		n, ok := g.Node(path[i])
		if !ok {
			return PathMetrics{}, math.Inf(1), FailureInvalidEdge
		}
		m.TotalDelay += n.ProcessingDelay
		m.TotalReliability *= n.Reliability
	}

	m.Hops = len(path) - 1

	cost := NormalizedCost(m, w)
	if b > 0 && m.MinBandwidth < b {
		cost = math.Inf(1)
	}
	return m, cost, FailureNone
}

// NormalizedCost applies the canonical clamped normalization from §3 to
// raw PathMetrics, without re-checking the bandwidth constraint.
func NormalizedCost(m PathMetrics, w Weights) float64 {
	normDelay := math.Min(m.TotalDelay/200.0, 1.0)
	normRel := math.Min((1-m.TotalReliability)*10.0, 1.0)
	normRes := math.Min(float64(m.Hops)/20.0, 1.0)
	return w.Delay*normDelay + w.Reliability*normRel + w.Resource*normRes
}

// MinBandwidth returns the minimum edge bandwidth along path, or +Inf
// for a path with fewer than two nodes.
func MinBandwidth(g *netgraph.Graph, path []int) float64 {
	if len(path) < 2 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.Edge(path[i], path[i+1])
		if !ok {
			return 0
		}
		if e.Bandwidth < min {
			min = e.Bandwidth
		}
	}
	return min
}

// Dominates reports whether a dominates b: at least as good on every
// metric (lower-or-equal delay, lower-or-equal resource cost, higher-or-equal
// reliability) and strictly better on at least one. This is the
// partial order underpinning Pareto analysis (§4.1, §4.11).
func Dominates(a, b PathMetrics) bool {
	betterOrEqual := a.TotalDelay <= b.TotalDelay &&
		a.TotalReliability >= b.TotalReliability &&
		a.ResourceCost <= b.ResourceCost
	if !betterOrEqual {
		return false
	}
	strictlyBetter := a.TotalDelay < b.TotalDelay ||
		a.TotalReliability > b.TotalReliability ||
		a.ResourceCost < b.ResourceCost
	return strictlyBetter
}
