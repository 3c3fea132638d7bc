// Package report composes analysis results into persisted artifacts:
// structured JSON document, narrative Markdown, velocity histogram,
// HTML dashboard and SQLite metrics database.
package report

import (
	"github.com/LdDl/motility-go/motility"
	"gonum.org/v1/gonum/stat"
)

// Summary is population level view over all tracks of one run.
type Summary struct {
	ProgressiveMotilityPct float64 `json:"progressive_motility_pct"`
	MeanVigorIndex         float64 `json:"mean_vigor_index"`
	TrajectoryCount        int     `json:"trajectory_count"`
}

// Summarize aggregates per-track metrics. No tracks yields zeroed summary.
func Summarize(metrics []motility.TrackMetrics) Summary {
	if len(metrics) == 0 {
		return Summary{}
	}
	progressive := 0
	vigor := make([]float64, len(metrics))
	for i, m := range metrics {
		if m.Progressive() {
			progressive++
		}
		vigor[i] = m.VigorIndex
	}
	return Summary{
		ProgressiveMotilityPct: float64(progressive) / float64(len(metrics)) * 100.0,
		MeanVigorIndex:         stat.Mean(vigor, nil),
		TrajectoryCount:        len(metrics),
	}
}

// VigorClassCounts returns number of tracks per vigor class, Low to High
func VigorClassCounts(metrics []motility.TrackMetrics) map[motility.VigorClass]int {
	counts := map[motility.VigorClass]int{
		motility.VigorLow:    0,
		motility.VigorMedium: 0,
		motility.VigorHigh:   0,
	}
	for _, m := range metrics {
		counts[m.VigorClass]++
	}
	return counts
}
