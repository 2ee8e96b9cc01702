package experiment

import (
	"context"
	"math"
	"time"

	"qosrouting/metrics"
	"qosrouting/netgraph"
	"qosrouting/optimize"
	"qosrouting/pathutil"
)

// ScalabilityPoint is one (algorithm, node_count) measurement from the
// scalability sweep, recovered from
// original_source/app/src/experiments/scalability_analyzer.py per
// SPEC_FULL.md §4.9.
type ScalabilityPoint struct {
	Algorithm   string
	NodeCount   int
	MeanTimeMs  float64
	MeanCost    float64
	SuccessRate float64
}

// ScalabilitySweep generates a fresh connected Erdos-Renyi graph at each
// node count (same master-seed discipline as the rest of the module), runs
// every named algorithm on the (S,D) demands sampled from that graph, with
// equal objective weights and no bandwidth floor, and records one
// ScalabilityPoint per (algorithm, node_count) averaged over those demands.
//
// nRepeats controls how many (S,D) demands are sampled per graph so the
// mean isn't a single noisy draw; it defaults to 3 if not positive.
func ScalabilitySweep(ctx context.Context, registry *optimize.Registry, algorithms []string, nodeCounts []int, masterSeed int64, nRepeats int) ([]ScalabilityPoint, error) {
	if nRepeats <= 0 {
		nRepeats = 3
	}

	connectionProb := 0.1
	ranges := netgraph.DefaultAttributeRanges()
	weights := metrics.Weights{Delay: 1.0 / 3, Reliability: 1.0 / 3, Resource: 1.0 / 3}

	var points []ScalabilityPoint
	for _, n := range nodeCounts {
		seed := optimize.DeriveSeed(masterSeed, n, 0)
		g, err := netgraph.GenerateErdosRenyi(n, connectionProb, seed, ranges)
		if err != nil {
			return nil, err
		}

		// Each node count gets a brand-new graph, but pathutil's
		// process-wide shortest-path cache is keyed only on
		// (source, dest, scheme) — not on graph identity. Without
		// clearing it here, a (source, dest) pair reused across node
		// counts would serve a path computed against the previous
		// graph, one whose nodes/edges may not even exist in this one.
		pathutil.DefaultCache().Clear()

		cases := GenerateRandom(g, seed, nRepeats)
		if len(cases) > nRepeats {
			cases = cases[:nRepeats]
		}
		for _, algoName := range algorithms {
			algo, err := registry.Get(algoName)
			if err != nil {
				continue
			}

			var timeSum, costSum float64
			var nSuccess int
			for i, tc := range cases {
				req := optimize.Request{
					Graph: g, Source: tc.Source, Destination: tc.Destination,
					Weights: weights, Bandwidth: 0, Seed: optimize.DeriveSeed(seed, i, 0),
				}
				res, elapsedMs := timedOptimize(ctx, algo, req)
				timeSum += elapsedMs
				if res.Feasible() {
					nSuccess++
					costSum += res.Cost
				}
			}

			p := ScalabilityPoint{Algorithm: algoName, NodeCount: n}
			if len(cases) > 0 {
				p.MeanTimeMs = timeSum / float64(len(cases))
				p.SuccessRate = float64(nSuccess) / float64(len(cases))
			}
			if nSuccess > 0 {
				p.MeanCost = costSum / float64(nSuccess)
			} else {
				p.MeanCost = math.NaN()
			}
			points = append(points, p)
		}
	}
	return points, nil
}

func timedOptimize(ctx context.Context, algo optimize.Optimizer, req optimize.Request) (optimize.Result, float64) {
	start := time.Now()
	res := algo.Optimize(ctx, req, nil)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
	return res, elapsedMs
}
