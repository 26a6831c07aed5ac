package trace

import (
	"github.com/montanaflynn/stats"
)

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	Units          int     `json:"units"`
	TotalSamples   int64   `json:"total_samples"`
	TotalHits      int64   `json:"total_hits"`
	MinShare       int64   `json:"min_share"`
	MaxShare       int64   `json:"max_share"`
	ZeroShareUnits int     `json:"zero_share_units"`
	MeanHitRatio   float64 `json:"mean_hit_ratio"`
	StdDevHitRatio float64 `json:"stddev_hit_ratio"`
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
// Hit ratio statistics cover only units that processed at least one sample.
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{}
	if rt == nil || len(rt.Partials) == 0 {
		return summary
	}

	summary.Units = len(rt.Partials)
	summary.MinShare = rt.Partials[0].Samples
	ratios := make([]float64, 0, len(rt.Partials))
	for _, p := range rt.Partials {
		summary.TotalSamples += p.Samples
		summary.TotalHits += p.Hits
		summary.MinShare = min(summary.MinShare, p.Samples)
		summary.MaxShare = max(summary.MaxShare, p.Samples)
		if p.Samples == 0 {
			summary.ZeroShareUnits++
			continue
		}
		ratios = append(ratios, p.HitRatio())
	}

	if len(ratios) > 0 {
		// errors only arise for empty input, excluded above
		summary.MeanHitRatio, _ = stats.Mean(ratios)
		summary.StdDevHitRatio, _ = stats.StandardDeviationPopulation(ratios)
	}
	return summary
}
