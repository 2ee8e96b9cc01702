package experiment

import (
	"context"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"qosrouting/netgraph"
	"qosrouting/optimize"
	"qosrouting/telemetry"
)

// CellResult is one (case, algorithm, repeat) invocation's outcome, per
// §4.9's per-cell record.
type CellResult struct {
	CaseID            int
	ScenarioName      string
	Algorithm         string
	Repeat            int
	Seed              int64
	Success           bool
	RequiredBandwidth float64
	MinBandwidth      float64
	Cost              float64
	TotalDelay        float64
	TotalReliability  float64
	ResourceCost      float64
	TimeMs            float64
	FailureReason     optimize.FailureReason
}

// Aggregate summarizes the N_repeats CellResults for one (case, algorithm)
// pair.
type Aggregate struct {
	CaseID                    int
	ScenarioName              string
	Algorithm                 string
	MeanCost                  float64
	StdCost                   float64
	MinCost                   float64
	MaxCost                   float64
	MeanTimeMs                float64
	StdTimeMs                 float64
	MinTimeMs                 float64
	MaxTimeMs                 float64
	SuccessRate               float64
	BandwidthSatisfactionRate float64
	BestSeed                  int64
	BestCost                  float64
}

// ComparisonRow is one algorithm's overall figures across every scenario,
// matching the CSV export columns named in §6: algorithm, success_rate,
// bandwidth_satisfaction_rate, overall_avg_cost, overall_avg_time_ms,
// best_cost, best_seed.
type ComparisonRow struct {
	Algorithm                 string
	SuccessRate               float64
	BandwidthSatisfactionRate float64
	OverallAvgCost            float64
	OverallAvgTimeMs          float64
	BestCost                  float64
	BestSeed                  int64
}

// RankingSummaryEntry counts how often an algorithm placed 1st/2nd/3rd by
// mean cost across all scenarios, per §4.9's ranking step.
type RankingSummaryEntry struct {
	Algorithm   string
	FirstPlace  int
	SecondPlace int
	ThirdPlace  int
}

// FailureDetail is one (reason, algorithm) grouping in the failure report.
type FailureDetail struct {
	Reason    optimize.FailureReason `json:"reason"`
	Algorithm string                 `json:"algorithm"`
	Count     int                    `json:"count"`
}

// FailureReport groups every unsuccessful cell by failure reason and
// algorithm, per §6's failure_report{total_failures, details[]} shape.
type FailureReport struct {
	TotalFailures int             `json:"total_failures"`
	Details       []FailureDetail `json:"details"`
}

// Runner executes the (case, algorithm, repeat) matrix against a registry
// of optimizers, adapted from the teacher's PathManager pool-dispatch
// pattern in forwarding/routing/manager.go: cells are submitted to a bounded
// ants pool and fall back to sequential execution if the pool cannot be
// created.
type Runner struct {
	Registry   *optimize.Registry
	NRepeats   int
	MasterSeed int64
	Timeout    time.Duration
}

// NewRunner builds a Runner against the global optimizer registry with the
// specification's defaults (N_repeats=5, no per-call timeout).
func NewRunner(masterSeed int64) *Runner {
	return &Runner{
		Registry:   optimize.GlobalRegistry(),
		NRepeats:   5,
		MasterSeed: masterSeed,
	}
}

// Run executes every (case, algorithm, repeat) cell, aggregates the
// results, and ranks the algorithms per scenario.
func (r *Runner) Run(ctx context.Context, cases []TestCase, algorithms []string, graph *netgraph.Graph) *Report {
	start := time.Now()
	nRepeats := r.NRepeats
	if nRepeats <= 0 {
		nRepeats = 5
	}

	type cellJob struct {
		caseIdx int
		algoIdx int
		repeat  int
	}

	var jobs []cellJob
	for ci := range cases {
		for ai := range algorithms {
			for rep := 0; rep < nRepeats; rep++ {
				jobs = append(jobs, cellJob{ci, ai, rep})
			}
		}
	}

	results := make([]CellResult, len(jobs))

	pool, err := optimize.NewPool(optimize.PoolConfig{})
	if err != nil {
		log.WithError(err).Warn("experiment runner: no worker pool, running cells sequentially")
		pool = nil
	}

	optimize.ParallelEval(pool, len(jobs), func(i int) {
		job := jobs[i]
		tc := cases[job.caseIdx]
		algoName := algorithms[job.algoIdx]

		algo, err := r.Registry.Get(algoName)
		if err != nil {
			results[i] = CellResult{
				CaseID: tc.ID, ScenarioName: tc.ScenarioName, Algorithm: algoName,
				Repeat: job.repeat, FailureReason: optimize.FailureAlgorithmError,
			}
			return
		}

		seed := optimize.DeriveSeed(r.MasterSeed, tc.ID, job.repeat)
		cellCtx := ctx
		var cancel context.CancelFunc
		if r.Timeout > 0 {
			cellCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		}

		req := optimize.Request{
			Graph: graph, Source: tc.Source, Destination: tc.Destination,
			Weights: tc.Weights, Bandwidth: tc.Bandwidth, Seed: seed,
		}

		callStart := time.Now()
		res := algo.Optimize(cellCtx, req, nil)
		elapsed := time.Since(callStart)
		if cancel != nil {
			cancel()
		}

		cr := CellResult{
			CaseID: tc.ID, ScenarioName: tc.ScenarioName, Algorithm: algoName,
			Repeat: job.repeat, Seed: seed, TimeMs: float64(elapsed.Microseconds()) / 1000.0,
			RequiredBandwidth: tc.Bandwidth,
		}
		if res.Feasible() {
			cr.Success = true
			cr.Cost = res.Cost
			cr.MinBandwidth = res.Metrics.MinBandwidth
			cr.TotalDelay = res.Metrics.TotalDelay
			cr.TotalReliability = res.Metrics.TotalReliability
			cr.ResourceCost = res.Metrics.ResourceCost
		} else {
			cr.FailureReason = res.Failure
			if cr.FailureReason == optimize.FailureNone {
				cr.FailureReason = optimize.FailureAlgorithmError
			}
		}
		results[i] = cr
		telemetry.DefaultRegistry().ObserveCell(algoName, cr.Success, string(cr.FailureReason), elapsed.Seconds(), cr.Cost)
	})

	aggregates := aggregate(cases, algorithms, results)
	comparison, ranking := rank(algorithms, aggregates)
	failures := failureReport(results)

	return &Report{
		NTestCases:      len(cases),
		NRepeats:        nRepeats,
		TotalTimeSec:    time.Since(start).Seconds(),
		PerCell:         results,
		ComparisonTable: comparison,
		RankingSummary:  ranking,
		ScenarioResults: aggregates,
		FailureReport:   failures,
	}
}

func aggregate(cases []TestCase, algorithms []string, results []CellResult) []Aggregate {
	type key struct {
		caseID int
		algo   string
	}
	grouped := make(map[key][]CellResult)
	order := make([]key, 0, len(cases)*len(algorithms))

	for _, r := range results {
		k := key{r.CaseID, r.Algorithm}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}

	out := make([]Aggregate, 0, len(order))
	for _, k := range order {
		cells := grouped[k]
		out = append(out, aggregateCells(k.caseID, k.algo, cells))
	}
	return out
}

func aggregateCells(caseID int, algo string, cells []CellResult) Aggregate {
	agg := Aggregate{CaseID: caseID, Algorithm: algo, MinCost: math.Inf(1), MinTimeMs: math.Inf(1), BestCost: math.Inf(1)}
	if len(cells) > 0 {
		agg.ScenarioName = cells[0].ScenarioName
	}

	var costs, times []float64
	var nSuccess, nBandwidthOK int

	for _, c := range cells {
		times = append(times, c.TimeMs)
		if c.TimeMs < agg.MinTimeMs {
			agg.MinTimeMs = c.TimeMs
		}
		if c.TimeMs > agg.MaxTimeMs {
			agg.MaxTimeMs = c.TimeMs
		}

		if !c.Success {
			continue
		}
		nSuccess++
		if c.MinBandwidth >= c.RequiredBandwidth {
			nBandwidthOK++
		}
		costs = append(costs, c.Cost)
		if c.Cost < agg.MinCost {
			agg.MinCost = c.Cost
		}
		if c.Cost > agg.MaxCost {
			agg.MaxCost = c.Cost
		}
		if c.Cost < agg.BestCost {
			agg.BestCost = c.Cost
			agg.BestSeed = c.Seed
		}
	}

	agg.MeanCost, agg.StdCost = meanStd(costs)
	agg.MeanTimeMs, agg.StdTimeMs = meanStd(times)
	if len(cells) > 0 {
		agg.SuccessRate = float64(nSuccess) / float64(len(cells))
		agg.BandwidthSatisfactionRate = float64(nBandwidthOK) / float64(len(cells))
	}
	if len(costs) == 0 {
		agg.MinCost = 0
		agg.BestCost = 0
	}
	return agg
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	std = math.Sqrt(variance)
	return mean, std
}

// rank orders algorithms by mean cost ascending within each scenario,
// breaking ties first by lower mean time_ms then alphabetically by name —
// the specification leaves this tie-break unspecified (§9 open question),
// so this resolves it explicitly rather than depending on map order. It
// returns both the overall comparison table and the per-scenario
// 1st/2nd/3rd place tallies.
func rank(algorithms []string, aggregates []Aggregate) ([]ComparisonRow, []RankingSummaryEntry) {
	byCase := make(map[int][]Aggregate)
	for _, a := range aggregates {
		byCase[a.CaseID] = append(byCase[a.CaseID], a)
	}

	places := make(map[string][3]int)
	for _, group := range byCase {
		sorted := append([]Aggregate(nil), group...)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].MeanCost != sorted[j].MeanCost {
				return sorted[i].MeanCost < sorted[j].MeanCost
			}
			if sorted[i].MeanTimeMs != sorted[j].MeanTimeMs {
				return sorted[i].MeanTimeMs < sorted[j].MeanTimeMs
			}
			return sorted[i].Algorithm < sorted[j].Algorithm
		})
		for place, a := range sorted {
			if place > 2 {
				break
			}
			p := places[a.Algorithm]
			p[place]++
			places[a.Algorithm] = p
		}
	}

	overall := make(map[string][]Aggregate)
	for _, a := range aggregates {
		overall[a.Algorithm] = append(overall[a.Algorithm], a)
	}

	rows := make([]ComparisonRow, 0, len(algorithms))
	summaries := make([]RankingSummaryEntry, 0, len(algorithms))
	for _, algo := range algorithms {
		group := overall[algo]
		p := places[algo]
		summaries = append(summaries, RankingSummaryEntry{Algorithm: algo, FirstPlace: p[0], SecondPlace: p[1], ThirdPlace: p[2]})

		var costSum, timeSum, successSum, bwSum float64
		best := math.Inf(1)
		var bestSeed int64
		for _, a := range group {
			costSum += a.MeanCost
			timeSum += a.MeanTimeMs
			successSum += a.SuccessRate
			bwSum += a.BandwidthSatisfactionRate
			if a.BestCost > 0 && a.BestCost < best {
				best = a.BestCost
				bestSeed = a.BestSeed
			}
		}
		n := float64(len(group))
		row := ComparisonRow{Algorithm: algo, BestSeed: bestSeed}
		if math.IsInf(best, 1) {
			best = 0
		}
		row.BestCost = best
		if n > 0 {
			row.OverallAvgCost = costSum / n
			row.OverallAvgTimeMs = timeSum / n
			row.SuccessRate = successSum / n
			row.BandwidthSatisfactionRate = bwSum / n
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OverallAvgCost != rows[j].OverallAvgCost {
			return rows[i].OverallAvgCost < rows[j].OverallAvgCost
		}
		return rows[i].Algorithm < rows[j].Algorithm
	})
	return rows, summaries
}

func failureReport(results []CellResult) FailureReport {
	counts := make(map[FailureDetail]int)
	total := 0
	for _, r := range results {
		if r.Success {
			continue
		}
		total++
		d := FailureDetail{Reason: r.FailureReason, Algorithm: r.Algorithm}
		counts[d]++
	}

	details := make([]FailureDetail, 0, len(counts))
	for d, n := range counts {
		d.Count = n
		details = append(details, d)
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].Reason != details[j].Reason {
			return details[i].Reason < details[j].Reason
		}
		return details[i].Algorithm < details[j].Algorithm
	})

	return FailureReport{TotalFailures: total, Details: details}
}
