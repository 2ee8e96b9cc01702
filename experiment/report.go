package experiment

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// Report is the experiment runner's final output. Field names on the JSON
// wire match §6's persisted-format contract exactly so downstream tooling
// built against the legacy report can parse either.
type Report struct {
	RunID           string                `json:"run_id,omitempty"`
	Timestamp       string                `json:"timestamp"`
	NTestCases      int                   `json:"n_test_cases"`
	NRepeats        int                   `json:"n_repeats"`
	TotalTimeSec    float64               `json:"total_time_sec"`
	ComparisonTable []ComparisonRow       `json:"comparison_table"`
	ScenarioResults []Aggregate           `json:"scenario_results"`
	RankingSummary  []RankingSummaryEntry `json:"ranking_summary"`
	FailureReport   FailureReport         `json:"failure_report"`
	PerCell         []CellResult          `json:"per_cell,omitempty"`
}

// WithTimestamp returns a copy of the report stamped with ts (RFC3339).
// The runner itself never calls time.Now — the caller supplies the
// timestamp so report generation stays a pure function of its inputs.
func (r *Report) WithTimestamp(ts string) *Report {
	out := *r
	out.Timestamp = ts
	return &out
}

// WithRunID returns a copy of the report stamped with id. Like
// WithTimestamp, ID generation (github.com/google/uuid) happens in the
// caller, not here, so Run itself stays a pure function of its inputs.
func (r *Report) WithRunID(id string) *Report {
	out := *r
	out.RunID = id
	return &out
}

// JSON marshals the report with the field names in the struct's json tags.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ComparisonCSV renders the comparison table using the column order named
// in §6: algorithm, success_rate, bandwidth_satisfaction_rate,
// overall_avg_cost, overall_avg_time_ms, best_cost, best_seed.
func (r *Report) ComparisonCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"algorithm", "success_rate", "bandwidth_satisfaction_rate",
		"overall_avg_cost", "overall_avg_time_ms", "best_cost", "best_seed",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range r.ComparisonTable {
		record := []string{
			row.Algorithm,
			fmt.Sprintf("%.6f", row.SuccessRate),
			fmt.Sprintf("%.6f", row.BandwidthSatisfactionRate),
			fmt.Sprintf("%.6f", row.OverallAvgCost),
			fmt.Sprintf("%.6f", row.OverallAvgTimeMs),
			fmt.Sprintf("%.6f", row.BestCost),
			fmt.Sprintf("%d", row.BestSeed),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
