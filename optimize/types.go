// Package optimize implements the six QoS path optimizers — genetic
// algorithm, ant colony optimization, particle swarm optimization,
// simulated annealing, Q-learning and SARSA — behind a single polymorphic
// interface, grounded on the teacher's PathCalculator/AlgorithmRegistry
// split: the experiment runner depends only on Optimizer, never on any
// concrete algorithm.
package optimize

import (
	"context"

	"qosrouting/metrics"
	"qosrouting/netgraph"
)

// FailureReason enumerates why an optimizer returned no usable path. The
// string values match the failure taxonomy of the reference implementation
// this module reimplements, so reports and dashboards built against either
// are directly comparable.
type FailureReason string

const (
	FailureNone                  FailureReason = ""
	FailureNoPath                FailureReason = "NO_PATH"
	FailureBandwidthInsufficient FailureReason = "BANDWIDTH_INSUFFICIENT"
	FailureTimeout               FailureReason = "TIMEOUT"
	FailureInvalidSource         FailureReason = "INVALID_SOURCE"
	FailureInvalidDestination    FailureReason = "INVALID_DESTINATION"
	FailureSameNode              FailureReason = "SAME_NODE"
	FailureAlgorithmError        FailureReason = "ALGORITHM_ERROR"
)

// Result is the uniform outcome of a single Optimize call.
type Result struct {
	Path       []int
	Cost       float64
	Metrics    metrics.PathMetrics
	Failure    FailureReason
	Iterations int
	Evaluations int
	// History holds the best-cost-so-far at each recorded generation or
	// iteration, for convergence plots. It is recorded whether or not
	// req.Progress is set, and is nil when the call returns before its
	// first generation or iteration.
	History []float64
}

// Feasible reports whether Optimize found a usable path.
func (r Result) Feasible() bool {
	return r.Failure == FailureNone && len(r.Path) >= 2
}

// ProgressFunc is invoked at most once per generation/iteration with the
// current iteration index and the best cost found so far (Q-learning and
// SARSA report every 50th episode). Optimizers must treat a
// nil ProgressFunc as "don't report progress".
type ProgressFunc func(iteration int, bestCost float64)

// Request bundles everything an Optimizer needs beyond its own tunable
// parameters: the graph to search, the demand (source, destination,
// bandwidth), the objective weights, and the reproducibility/cancellation
// controls shared by every algorithm.
type Request struct {
	Graph       *netgraph.Graph
	Source      int
	Destination int
	Weights     metrics.Weights
	Bandwidth   float64
	Seed        int64
	Progress    ProgressFunc
}

// Optimizer is the capability every algorithm in this package implements.
// The experiment runner, CLI and benchmark harness depend only on this
// interface — never on a concrete algorithm type — mirroring the teacher's
// PathCalculator abstraction.
type Optimizer interface {
	// Optimize searches for a low-cost path satisfying req, honoring
	// ctx cancellation. params overrides DefaultParams() entries by key;
	// unrecognized keys are ignored.
	Optimize(ctx context.Context, req Request, params map[string]interface{}) Result

	// Name is the algorithm's registry key (e.g. "ga", "aco", "pso").
	Name() string

	// DefaultParams returns a fresh copy of this algorithm's tunable
	// parameter defaults.
	DefaultParams() map[string]interface{}
}

// validateRequest performs the universal pre-flight checks every optimizer
// must run before spending any iterations: unknown nodes, same-node
// demands, and fast-fail reachability (ignoring bandwidth, since a
// bandwidth-infeasible demand is a distinct failure reason reported only
// after search confirms no feasible path exists).
func validateRequest(req Request) (Result, bool) {
	if !req.Graph.HasNode(req.Source) {
		return Result{Failure: FailureInvalidSource}, false
	}
	if !req.Graph.HasNode(req.Destination) {
		return Result{Failure: FailureInvalidDestination}, false
	}
	if req.Source == req.Destination {
		return Result{Failure: FailureSameNode}, false
	}
	if !req.Graph.Reachable(req.Source, req.Destination) {
		return Result{Failure: FailureNoPath}, false
	}
	return Result{}, true
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

func floatParam(params map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}
