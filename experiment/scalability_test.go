package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/optimize"
	"qosrouting/pathutil"
)

func TestScalabilitySweep_OnePointPerAlgorithmAndNodeCount(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "a", costOf: func(seed int64) float64 { return 0.2 }}))
	require.NoError(t, reg.Register(seededCostOptimizer{name: "b", costOf: func(seed int64) float64 { return 0.4 }}))

	points, err := ScalabilitySweep(context.Background(), reg, []string{"a", "b"}, []int{10, 20}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, points, 4)

	seen := map[string]bool{}
	for _, p := range points {
		seen[p.Algorithm] = true
		assert.Equal(t, 1.0, p.SuccessRate)
		assert.Greater(t, p.NodeCount, 0)
	}
	assert.True(t, seen["a"] && seen["b"])
}

func TestScalabilitySweep_DeterministicAcrossRuns(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "a", costOf: func(seed int64) float64 { return float64(seed % 7) }}))

	p1, err := ScalabilitySweep(context.Background(), reg, []string{"a"}, []int{15}, 99, 2)
	require.NoError(t, err)
	p2, err := ScalabilitySweep(context.Background(), reg, []string{"a"}, []int{15}, 99, 2)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
}

func TestScalabilitySweep_AllFailuresYieldNaNMeanCost(t *testing.T) {
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(seededCostOptimizer{name: "broken", fails: true, failWith: optimize.FailureNoPath}))

	points, err := ScalabilitySweep(context.Background(), reg, []string{"broken"}, []int{10}, 1, 2)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].SuccessRate)
	assert.True(t, points[0].MeanCost != points[0].MeanCost, "expected NaN mean cost when every repeat fails")
}

// cacheProbeOptimizer is a test double that reads straight from the
// process-wide shortest-path cache instead of computing anything itself, so
// a test can observe exactly what CachedShortestPath hands back for a given
// (graph, source, destination) during a sweep.
type cacheProbeOptimizer struct {
	sawSentinel *bool
	sentinel    int
}

func (o cacheProbeOptimizer) Optimize(ctx context.Context, req optimize.Request, params map[string]interface{}) optimize.Result {
	path, cost, ok := pathutil.CachedShortestPath(req.Graph, req.Source, req.Destination, pathutil.WeightHops)
	if ok {
		for _, node := range path {
			if node == o.sentinel {
				*o.sawSentinel = true
			}
		}
	}
	return optimize.Result{Path: []int{req.Source, req.Destination}, Cost: cost, Metrics: metrics.PathMetrics{MinBandwidth: 1000}}
}
func (o cacheProbeOptimizer) Name() string                          { return "probe" }
func (o cacheProbeOptimizer) DefaultParams() map[string]interface{} { return map[string]interface{}{} }

// TestScalabilitySweep_ClearsCacheBetweenGraphs reproduces the exact
// cross-graph contamination the sweep must avoid: it primes the process-wide
// cache with a path computed against a decoy graph sharing the sweep's first
// (source, destination) pair but bridged through a node ID the swept graph
// can never contain, then asserts the sweep never observes that sentinel —
// i.e. it recomputed against its own graph rather than serving the stale
// entry.
func TestScalabilitySweep_ClearsCacheBetweenGraphs(t *testing.T) {
	const n = 8
	const connectionProb = 0.1 // must match ScalabilitySweep's own constant
	const masterSeed int64 = 42
	const nRepeats = 2
	const sentinel = 9999 // guaranteed absent from an n=8 node graph

	seed := optimize.DeriveSeed(masterSeed, n, 0)
	g, err := netgraph.GenerateErdosRenyi(n, connectionProb, seed, netgraph.DefaultAttributeRanges())
	require.NoError(t, err)

	cases := GenerateRandom(g, seed, nRepeats)
	require.NotEmpty(t, cases)
	source, dest := cases[0].Source, cases[0].Destination

	decoy := netgraph.New()
	decoy.AddNode(source, netgraph.Node{})
	decoy.AddNode(dest, netgraph.Node{})
	decoy.AddNode(sentinel, netgraph.Node{})
	decoy.AddEdge(source, sentinel, netgraph.Edge{Bandwidth: 500, Delay: 5, Reliability: 0.99})
	decoy.AddEdge(sentinel, dest, netgraph.Edge{Bandwidth: 500, Delay: 5, Reliability: 0.99})

	pathutil.DefaultCache().Clear()
	t.Cleanup(func() { pathutil.DefaultCache().Clear() })
	poisonedPath, _, ok := pathutil.CachedShortestPath(decoy, source, dest, pathutil.WeightHops)
	require.True(t, ok)
	require.Contains(t, poisonedPath, sentinel, "decoy graph must force the shortest hop path through the sentinel")

	sawSentinel := false
	reg := optimize.NewRegistry()
	require.NoError(t, reg.Register(cacheProbeOptimizer{sawSentinel: &sawSentinel, sentinel: sentinel}))

	_, err = ScalabilitySweep(context.Background(), reg, []string{"probe"}, []int{n}, masterSeed, nRepeats)
	require.NoError(t, err)

	assert.False(t, sawSentinel, "sweep must clear the shared cache before reusing (source, dest) pairs across graphs")
}
