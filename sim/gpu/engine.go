// Package gpu runs the estimator as a single kernel launch: one thread per
// sample, one generator state per thread, and an atomic shared counter as
// the reduction step.
package gpu

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/pisim/sim"
)

// DefaultThreadsPerBlock is the block size used when none is configured.
const DefaultThreadsPerBlock = 128

// Engine runs one launch per Estimate call on the device DeviceID.
type Engine struct {
	ThreadsPerBlock int
	DeviceID        int
	Seed            int64
	Strategy        Strategy
	Observer        sim.Observer
}

// NewEngine creates an atomic-strategy Engine.
func NewEngine(threadsPerBlock, deviceID int, seed int64) *Engine {
	return &Engine{
		ThreadsPerBlock: threadsPerBlock,
		DeviceID:        deviceID,
		Seed:            seed,
		Strategy:        StrategyAtomic,
	}
}

// Estimate implements sim.Estimator.
//
// Arguments are validated before the device is looked up; a launch failure
// fails the whole run.
func (e *Engine) Estimate(ctx context.Context, total sim.SampleCount) (sim.EstimationResult, error) {
	grid, err := GridFor(total, e.ThreadsPerBlock)
	if err != nil {
		return sim.EstimationResult{}, err
	}
	if !ValidStrategies[string(e.Strategy)] {
		return sim.EstimationResult{}, fmt.Errorf("unknown kernel strategy %q: %w", e.Strategy, sim.ErrInvalidArgument)
	}
	dev, err := Lookup(e.DeviceID)
	if err != nil {
		return sim.EstimationResult{}, err
	}
	if e.ThreadsPerBlock > dev.MaxThreadsPerBlock() {
		return sim.EstimationResult{}, fmt.Errorf("%d threads per block exceeds %s limit %d: %w",
			e.ThreadsPerBlock, dev.Name(), dev.MaxThreadsPerBlock(), sim.ErrInvalidArgument)
	}

	logrus.Debugf("gpu: device %d (%s), %d samples, grid %d blocks x %d threads = %d, strategy=%s",
		e.DeviceID, dev.Name(), total, grid.Blocks, grid.ThreadsPerBlock, grid.TotalThreads(), e.strategy())

	mem := Alloc(grid, sim.NewSimulationKey(e.Seed))
	defer mem.Free()

	switch e.strategy() {
	case StrategyBatch:
		err = runBatch(ctx, dev, grid, mem, int(total))
	default:
		err = runAtomic(ctx, dev, grid, mem, int(total))
	}
	if err != nil {
		return sim.EstimationResult{}, fmt.Errorf("kernel launch on device %d: %w: %w", e.DeviceID, sim.ErrUnitFailed, err)
	}

	hits, samples := mem.ReadBack()
	reducer := sim.NewReducer(e.Observer)
	if err := reducer.Merge(sim.PartialResult{UnitID: 0, Hits: hits, SamplesProcessed: sim.SampleCount(samples)}); err != nil {
		return sim.EstimationResult{}, err
	}
	return reducer.Result(total)
}

func (e *Engine) strategy() Strategy {
	if e.Strategy == "" {
		return StrategyAtomic
	}
	return e.Strategy
}

// EstimateGPU estimates π from numSamples points with one thread per sample
// on device deviceID, using sim.DefaultSeed.
func EstimateGPU(numSamples int64, threadsPerBlock int, deviceID int) (float64, error) {
	res, err := NewEngine(threadsPerBlock, deviceID, sim.DefaultSeed).Estimate(context.Background(), sim.SampleCount(numSamples))
	if err != nil {
		return 0, err
	}
	return res.PiEstimate, nil
}
