package sim

import "fmt"

// Reducer merges PartialResults into one total.
//
// Merging is addition of hits and samples, so the result does not depend on
// the order partials arrive in. Each unit id may be merged at most once.
//
// Thread-safety: NOT thread-safe. Feed it from the collecting goroutine.
type Reducer struct {
	hits     int64
	samples  SampleCount
	merged   map[int]bool
	observer Observer
}

// NewReducer creates an empty Reducer. observer may be nil.
func NewReducer(observer Observer) *Reducer {
	return &Reducer{
		merged:   make(map[int]bool),
		observer: observer,
	}
}

// Merge folds one partial into the running totals.
// A second partial for the same unit, or one with more hits than samples,
// is an internal consistency error.
func (r *Reducer) Merge(p PartialResult) error {
	if r.merged[p.UnitID] {
		return fmt.Errorf("unit %d reported twice: %w", p.UnitID, ErrInternalConsistency)
	}
	if p.Hits < 0 || p.SamplesProcessed < 0 || p.Hits > int64(p.SamplesProcessed) {
		return fmt.Errorf("unit %d reported %d hits for %d samples: %w",
			p.UnitID, p.Hits, p.SamplesProcessed, ErrInternalConsistency)
	}
	r.merged[p.UnitID] = true
	r.hits += p.Hits
	r.samples += p.SamplesProcessed
	if r.observer != nil {
		r.observer(p)
	}
	return nil
}

// Merged returns the number of partials merged so far.
func (r *Reducer) Merged() int {
	return len(r.merged)
}

// Result finalizes the run. The merged sample total must equal expected.
func (r *Reducer) Result(expected SampleCount) (EstimationResult, error) {
	if expected <= 0 {
		return EstimationResult{}, fmt.Errorf("expected sample count must be positive, got %d: %w", expected, ErrInvalidArgument)
	}
	if r.samples != expected {
		return EstimationResult{}, fmt.Errorf("merged %d samples from %d units, expected %d: %w",
			r.samples, len(r.merged), expected, ErrInternalConsistency)
	}
	return EstimationResult{
		TotalSamples: r.samples,
		TotalHits:    r.hits,
		PiEstimate:   4.0 * float64(r.hits) / float64(r.samples),
	}, nil
}

// Reduce merges partials in slice order and finalizes against expected.
func Reduce(partials []PartialResult, expected SampleCount) (EstimationResult, error) {
	r := NewReducer(nil)
	for _, p := range partials {
		if err := r.Merge(p); err != nil {
			return EstimationResult{}, err
		}
	}
	return r.Result(expected)
}
