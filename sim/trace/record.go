// Package trace records the partial results of a run in the order they were
// merged, for inspecting how work was spread across execution units.
package trace

// PartialRecord captures one merged PartialResult.
type PartialRecord struct {
	Order   int   `json:"order"` // 0-based merge position
	UnitID  int   `json:"unit_id"`
	Hits    int64 `json:"hits"`
	Samples int64 `json:"samples"`
}

// HitRatio is Hits/Samples, or 0 for a unit that processed nothing.
func (r PartialRecord) HitRatio() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Samples)
}
