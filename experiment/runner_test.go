package experiment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/optimize"
)

// seededCostOptimizer is a deterministic test double: its cost is a pure
// function of req.Seed, so aggregation/ranking math can be checked without
// depending on any real algorithm's convergence behavior.
type seededCostOptimizer struct {
	name     string
	costOf   func(seed int64) float64
	fails    bool
	failWith optimize.FailureReason
}

func (o seededCostOptimizer) Optimize(ctx context.Context, req optimize.Request, params map[string]interface{}) optimize.Result {
	if o.fails {
		return optimize.Result{Failure: o.failWith}
	}
	cost := o.costOf(req.Seed)
	return optimize.Result{
		Path:    []int{req.Source, req.Destination},
		Cost:    cost,
		Metrics: metrics.PathMetrics{MinBandwidth: req.Bandwidth, TotalDelay: cost * 10},
	}
}
func (o seededCostOptimizer) Name() string                          { return o.name }
func (o seededCostOptimizer) DefaultParams() map[string]interface{} { return map[string]interface{}{} }

func twoNodeGraph() *netgraph.Graph {
	g := netgraph.New()
	g.AddNode(0, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	g.AddNode(1, netgraph.Node{ProcessingDelay: 1.0, Reliability: 0.99})
	g.AddEdge(0, 1, netgraph.Edge{Bandwidth: 500, Delay: 5, Reliability: 0.98})
	return g
}

func TestRunner_AggregatesCellsPerCaseAndAlgorithm(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "cheap", costOf: func(seed int64) float64 { return 0.1 }}))
	require.NoError(t, reg.Register(seededCostOptimizer{name: "expensive", costOf: func(seed int64) float64 { return 0.9 }}))

	g := twoNodeGraph()
	cases := []TestCase{
		{ID: 0, ScenarioName: "equal-weight", Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}, Bandwidth: 100},
	}

	r := &Runner{Registry: reg, NRepeats: 4, MasterSeed: 1}
	report := r.Run(context.Background(), cases, []string{"cheap", "expensive"}, g)

	require.Len(t, report.ScenarioResults, 2)
	require.Len(t, report.ComparisonTable, 2)
	assert.Equal(t, "cheap", report.ComparisonTable[0].Algorithm, "cheap should rank first by mean cost")

	for _, agg := range report.ScenarioResults {
		assert.Equal(t, 1.0, agg.SuccessRate)
	}
}

func TestRunner_RankingSummaryCountsPlaces(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "best", costOf: func(seed int64) float64 { return 0.1 }}))
	require.NoError(t, reg.Register(seededCostOptimizer{name: "worst", costOf: func(seed int64) float64 { return 0.9 }}))

	g := twoNodeGraph()
	cases := []TestCase{
		{ID: 0, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}, Bandwidth: 0},
		{ID: 1, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 0, Reliability: 1, Resource: 0}, Bandwidth: 0},
	}

	r := &Runner{Registry: reg, NRepeats: 2, MasterSeed: 5}
	report := r.Run(context.Background(), cases, []string{"best", "worst"}, g)

	require.Len(t, report.RankingSummary, 2)
	var best, worst RankingSummaryEntry
	for _, s := range report.RankingSummary {
		if s.Algorithm == "best" {
			best = s
		} else {
			worst = s
		}
	}
	assert.Equal(t, 2, best.FirstPlace)
	assert.Equal(t, 0, worst.FirstPlace)
	assert.Equal(t, 2, worst.SecondPlace)
}

func TestRunner_FailureReportGroupsByReasonAndAlgorithm(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "broken", fails: true, failWith: optimize.FailureNoPath}))

	g := twoNodeGraph()
	cases := []TestCase{{ID: 0, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}, Bandwidth: 0}}

	r := &Runner{Registry: reg, NRepeats: 3, MasterSeed: 9}
	report := r.Run(context.Background(), cases, []string{"broken"}, g)

	assert.Equal(t, 3, report.FailureReport.TotalFailures)
	require.Len(t, report.FailureReport.Details, 1)
	assert.Equal(t, optimize.FailureNoPath, report.FailureReport.Details[0].Reason)
	assert.Equal(t, "broken", report.FailureReport.Details[0].Algorithm)
	assert.Equal(t, 3, report.FailureReport.Details[0].Count)
}

func TestRunner_SeedsAreDeterministicAcrossRepeats(t *testing.T) {
	// cells run concurrently on the runner's pool, so the recorders lock.
	var mu sync.Mutex
	var seenSeeds []int64
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "recorder", costOf: func(seed int64) float64 {
		mu.Lock()
		defer mu.Unlock()
		seenSeeds = append(seenSeeds, seed)
		return 0.5
	}}))

	g := twoNodeGraph()
	cases := []TestCase{{ID: 0, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}, Bandwidth: 0}}

	r := &Runner{Registry: reg, NRepeats: 3, MasterSeed: 42}
	r.Run(context.Background(), cases, []string{"recorder"}, g)

	require.Len(t, seenSeeds, 3)
	unique := map[int64]bool{}
	for _, s := range seenSeeds {
		unique[s] = true
	}
	assert.Len(t, unique, 3, "each repeat must draw a distinct seed")

	var again []int64
	reg2 := optimize.NewRegistry()
	require.NoError(t, reg2.Register(seededCostOptimizer{name: "recorder", costOf: func(seed int64) float64 {
		mu.Lock()
		defer mu.Unlock()
		again = append(again, seed)
		return 0.5
	}}))
	r2 := &Runner{Registry: reg2, NRepeats: 3, MasterSeed: 42}
	r2.Run(context.Background(), cases, []string{"recorder"}, g)

	assert.ElementsMatch(t, seenSeeds, again, "same master seed must reproduce the same per-repeat seeds")
}

func TestReport_ComparisonCSVHasExpectedHeader(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "only", costOf: func(seed int64) float64 { return 0.3 }}))

	g := twoNodeGraph()
	cases := []TestCase{{ID: 0, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}, Bandwidth: 0}}
	r := &Runner{Registry: reg, NRepeats: 1, MasterSeed: 1}
	report := r.Run(context.Background(), cases, []string{"only"}, g)

	csvBytes, err := report.ComparisonCSV()
	require.NoError(t, err)
	assert.Contains(t, string(csvBytes), "algorithm,success_rate,bandwidth_satisfaction_rate,overall_avg_cost,overall_avg_time_ms,best_cost,best_seed")
}

func TestReport_JSONRoundTripsTopLevelKeys(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "only", costOf: func(seed int64) float64 { return 0.3 }}))

	g := twoNodeGraph()
	cases := []TestCase{{ID: 0, Source: 0, Destination: 1, Weights: metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}, Bandwidth: 0}}
	r := &Runner{Registry: reg, NRepeats: 1, MasterSeed: 1}
	report := r.Run(context.Background(), cases, []string{"only"}, g).WithTimestamp("2026-08-03T00:00:00Z")

	data, err := report.JSON()
	require.NoError(t, err)
	for _, key := range []string{`"timestamp"`, `"n_test_cases"`, `"n_repeats"`, `"total_time_sec"`, `"comparison_table"`, `"scenario_results"`, `"ranking_summary"`, `"failure_report"`} {
		assert.Contains(t, string(data), key)
	}
}

func TestReport_WithRunIDStampsIDWithoutMutatingOriginal(t *testing.T) {
	original := &Report{NTestCases: 1}
	stamped := original.WithRunID("abc-123")

	assert.Equal(t, "abc-123", stamped.RunID)
	assert.Empty(t, original.RunID)
}
