// Package experiment drives the (case, algorithm, repeat) matrix described
// in the specification's Experiment Runner component: it generates test
// cases, invokes every registered optimizer across deterministic seeds, and
// aggregates the results into a comparison report.
package experiment

import (
	"math/rand"

	"qosrouting/metrics"
	"qosrouting/netgraph"
)

// TestCase is one (source, destination, weights, bandwidth) demand drawn
// either from the predefined deck or a random generator.
type TestCase struct {
	ID           int
	ScenarioName string
	Source       int
	Destination  int
	Weights      metrics.Weights
	Bandwidth    float64
}

// weightScenario names one of the 10 predefined objective-weight points.
type weightScenario struct {
	name    string
	weights metrics.Weights
}

// predefinedWeightScenarios covers the three single-objective extremes,
// the three pairwise 50/50 splits, the equal-weight center, and three
// "priority" skews that lean toward one objective without zeroing the
// others out. The specification names "four pairwise combinations" but
// the deck totals exactly 10 scenarios; with only three objectives there
// are only three distinct unordered pairs, so this reads the fourth
// pairwise slot as the equal-weight point folded into the same group and
// keeps three dedicated pairwise entries plus equal-weight as its own
// row — the count matches, and every pairwise combination of objectives
// is still represented.
func predefinedWeightScenarios() []weightScenario {
	return []weightScenario{
		{"delay-only", metrics.Weights{Delay: 1, Reliability: 0, Resource: 0}},
		{"reliability-only", metrics.Weights{Delay: 0, Reliability: 1, Resource: 0}},
		{"resource-only", metrics.Weights{Delay: 0, Reliability: 0, Resource: 1}},
		{"delay-reliability", metrics.Weights{Delay: 0.5, Reliability: 0.5, Resource: 0}},
		{"delay-resource", metrics.Weights{Delay: 0.5, Reliability: 0, Resource: 0.5}},
		{"reliability-resource", metrics.Weights{Delay: 0, Reliability: 0.5, Resource: 0.5}},
		{"equal-weight", metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}},
		{"priority-delay", metrics.Weights{Delay: 0.6, Reliability: 0.2, Resource: 0.2}},
		{"priority-reliability", metrics.Weights{Delay: 0.2, Reliability: 0.6, Resource: 0.2}},
		{"priority-resource", metrics.Weights{Delay: 0.2, Reliability: 0.2, Resource: 0.6}},
	}
}

// predefinedBandwidthRequirements is 100..1000 Mbps in steps of 100.
func predefinedBandwidthRequirements() []float64 {
	out := make([]float64, 10)
	for i := range out {
		out[i] = float64(100 * (i + 1))
	}
	return out
}

const minGeneratedTestCases = 20

// GeneratePredefined produces exactly 25 test cases, a pure function of
// (graph topology, masterSeed): the (S,D) pairs are drawn from a
// masterSeed-derived RNG, while the weight scenario and bandwidth
// requirement cycle through their own 10-entry lists; the bandwidth phase
// shifts by one on every pass through the scenario list, so a scenario is
// not paired with the same bandwidth on each pass.
func GeneratePredefined(g *netgraph.Graph, masterSeed int64) []TestCase {
	return generateCases(g, masterSeed, 25)
}

// GenerateRandom produces n test cases (clamped up to minGeneratedTestCases)
// using the same deterministic generation scheme as GeneratePredefined.
func GenerateRandom(g *netgraph.Graph, masterSeed int64, n int) []TestCase {
	if n < minGeneratedTestCases {
		n = minGeneratedTestCases
	}
	return generateCases(g, masterSeed, n)
}

func generateCases(g *netgraph.Graph, masterSeed int64, n int) []TestCase {
	nodes := sortedNodeIDs(g)
	if len(nodes) < 2 {
		return nil
	}

	rng := rand.New(rand.NewSource(masterSeed ^ 0x7e57_cafe))
	scenarios := predefinedWeightScenarios()
	bandwidths := predefinedBandwidthRequirements()

	cases := make([]TestCase, 0, n)
	for i := 0; i < n; i++ {
		source := nodes[rng.Intn(len(nodes))]
		dest := nodes[rng.Intn(len(nodes))]
		for dest == source {
			dest = nodes[rng.Intn(len(nodes))]
		}

		scenario := scenarios[i%len(scenarios)]
		bandwidth := bandwidths[(i+i/len(scenarios)+3)%len(bandwidths)]

		cases = append(cases, TestCase{
			ID:           i,
			ScenarioName: scenario.name,
			Source:       source,
			Destination:  dest,
			Weights:      scenario.weights,
			Bandwidth:    bandwidth,
		})
	}
	return cases
}

func sortedNodeIDs(g *netgraph.Graph) []int {
	ids := g.NodeIDs()
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
