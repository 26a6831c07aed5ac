package sim

import "context"

// SampleCount is a number of points to simulate.
type SampleCount int64

// UnitCount is a number of independent execution units.
type UnitCount int

// DefaultSeed is the run seed used when the caller does not pick one.
const DefaultSeed int64 = 1

// WorkerAssignment is the share of a run's samples given to one execution unit.
type WorkerAssignment struct {
	UnitID      int
	SampleCount SampleCount
}

// PartialResult is what one execution unit reports back.
// Hits never exceeds SamplesProcessed.
type PartialResult struct {
	UnitID           int
	Hits             int64
	SamplesProcessed SampleCount
}

// EstimationResult is the sole durable output of a run.
type EstimationResult struct {
	TotalSamples SampleCount `json:"total_samples"`
	TotalHits    int64       `json:"total_hits"`
	PiEstimate   float64     `json:"pi_estimate"`
}

// Observer is notified once for every PartialResult merged by a Reducer,
// in merge order. It runs on the merging goroutine.
type Observer func(PartialResult)

// Estimator is implemented by every substrate engine.
type Estimator interface {
	Estimate(ctx context.Context, total SampleCount) (EstimationResult, error)
}
