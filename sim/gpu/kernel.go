package gpu

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/inference-sim/pisim/sim"
)

// Strategy selects how a launch reduces hits.
type Strategy string

const (
	// StrategyAtomic: every active thread draws one pair and atomically
	// increments the shared counter on a hit.
	StrategyAtomic Strategy = "atomic"

	// StrategyBatch: threads fill bulk coordinate arrays, then the host
	// applies the predicate elementwise and sums the mask.
	StrategyBatch Strategy = "batch"
)

// MaxBatchSamples bounds the bulk arrays of StrategyBatch (two float64 per sample).
const MaxBatchSamples = 1 << 26

// ValidStrategies is the set of recognized strategy names.
var ValidStrategies = map[string]bool{"": true, string(StrategyAtomic): true, string(StrategyBatch): true}

// piKernel is the per-thread Monte Carlo step. Threads at or beyond
// numSamples are block-alignment padding: they draw nothing and add nothing.
func piKernel(mem *Memory, numSamples int) Kernel {
	return func(t ThreadIdx) {
		id := t.Global()
		if id >= numSamples {
			return
		}
		state := mem.State(id)
		x, y := state.Float64(), state.Float64()
		if sim.Inside(x, y) {
			mem.AddHits(1)
		}
		mem.AddSamples(1)
	}
}

// fillKernel writes thread id's pair into xs[id], ys[id]. Every active
// thread owns a distinct index, so no write is contended.
func fillKernel(mem *Memory, xs, ys []float64) Kernel {
	return func(t ThreadIdx) {
		id := t.Global()
		if id >= len(xs) {
			return
		}
		state := mem.State(id)
		xs[id], ys[id] = state.Float64(), state.Float64()
	}
}

// runAtomic launches piKernel over grid.
func runAtomic(ctx context.Context, dev Device, grid Grid, mem *Memory, numSamples int) error {
	return dev.Launch(ctx, grid, piKernel(mem, numSamples))
}

// runBatch generates all pairs in one launch, then reduces them in bulk:
// xs <- xs*xs + ys*ys, hits = count(xs <= 1).
// It consumes the same per-thread draws as runAtomic, so both strategies
// count identical hits for the same key.
func runBatch(ctx context.Context, dev Device, grid Grid, mem *Memory, numSamples int) error {
	if numSamples > MaxBatchSamples {
		return fmt.Errorf("batch strategy holds at most %d samples, got %d: %w",
			MaxBatchSamples, numSamples, sim.ErrInvalidArgument)
	}
	xs := make([]float64, numSamples)
	ys := make([]float64, numSamples)
	if err := dev.Launch(ctx, grid, fillKernel(mem, xs, ys)); err != nil {
		return err
	}

	floats.Mul(xs, xs)
	floats.Mul(ys, ys)
	floats.Add(xs, ys)

	var hits int64
	for _, r := range xs {
		if r <= 1 {
			hits++
		}
	}
	mem.AddHits(hits)
	mem.AddSamples(int64(len(xs)))
	return nil
}
