package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// SequentialEngine runs the whole sample count as a single unit on the
// calling goroutine. It is the baseline the other substrates are compared to.
type SequentialEngine struct {
	Seed     int64
	Observer Observer
}

// NewSequentialEngine creates a SequentialEngine for the given seed.
func NewSequentialEngine(seed int64) *SequentialEngine {
	return &SequentialEngine{Seed: seed}
}

// Estimate implements Estimator.
func (e *SequentialEngine) Estimate(ctx context.Context, total SampleCount) (EstimationResult, error) {
	assignments, err := Partition(total, 1)
	if err != nil {
		return EstimationResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return EstimationResult{}, fmt.Errorf("sequential run not started: %w", err)
	}

	rng := NewPartitionedRNG(NewSimulationKey(e.Seed))
	reducer := NewReducer(e.Observer)
	logrus.Debugf("sequential: %d samples, seed=%d", total, e.Seed)

	for _, a := range assignments {
		partial, err := Accumulate(a.UnitID, rng.ForUnit(a.UnitID), a.SampleCount)
		if err != nil {
			return EstimationResult{}, err
		}
		if err := reducer.Merge(partial); err != nil {
			return EstimationResult{}, err
		}
	}
	return reducer.Result(total)
}

// EstimateSequential estimates π from numSamples points using DefaultSeed.
func EstimateSequential(numSamples int64) (float64, error) {
	res, err := NewSequentialEngine(DefaultSeed).Estimate(context.Background(), SampleCount(numSamples))
	if err != nil {
		return 0, err
	}
	return res.PiEstimate, nil
}
