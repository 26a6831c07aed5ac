package gpu

import (
	"fmt"

	"github.com/inference-sim/pisim/sim"
)

// MaxGridThreads caps the threads of one launch. Each thread owns a 16-byte
// generator state, so this bounds RNG state memory at 2 GiB.
const MaxGridThreads = 1 << 27

// Grid is a one-dimensional launch configuration.
type Grid struct {
	Blocks          int
	ThreadsPerBlock int
}

// TotalThreads is Blocks*ThreadsPerBlock. It may exceed the sample count;
// the padding threads are masked off by the kernel.
func (g Grid) TotalThreads() int {
	return g.Blocks * g.ThreadsPerBlock
}

// GridFor sizes a grid with one thread per sample:
// blocks = ceil(numSamples / threadsPerBlock).
func GridFor(numSamples sim.SampleCount, threadsPerBlock int) (Grid, error) {
	if numSamples <= 0 {
		return Grid{}, fmt.Errorf("sample count must be positive, got %d: %w", numSamples, sim.ErrInvalidArgument)
	}
	if threadsPerBlock <= 0 {
		return Grid{}, fmt.Errorf("threads per block must be positive, got %d: %w", threadsPerBlock, sim.ErrInvalidArgument)
	}
	if int64(numSamples) > MaxGridThreads {
		return Grid{}, fmt.Errorf("sample count %d exceeds %d threads per launch: %w",
			numSamples, MaxGridThreads, sim.ErrInvalidArgument)
	}
	tpb := int64(threadsPerBlock)
	blocks := (int64(numSamples) + tpb - 1) / tpb
	if blocks*tpb > MaxGridThreads {
		return Grid{}, fmt.Errorf("grid of %d blocks x %d threads exceeds %d threads: %w",
			blocks, threadsPerBlock, MaxGridThreads, sim.ErrInvalidArgument)
	}
	return Grid{Blocks: int(blocks), ThreadsPerBlock: threadsPerBlock}, nil
}
