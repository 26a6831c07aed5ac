package gpu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/pisim/sim"
)

// expectedHits replays threads 0..n-1 from fresh states.
func expectedHits(key sim.SimulationKey, n int) int64 {
	var hits int64
	for _, s := range sim.SplitStreams(key, n) {
		x, y := s.Float64(), s.Float64()
		if sim.Inside(x, y) {
			hits++
		}
	}
	return hits
}

func TestPiKernel_PaddingThreadsContributeNothing(t *testing.T) {
	// GIVEN 1000 samples at 256 threads per block: 4 blocks, 1024 threads
	key := sim.NewSimulationKey(1)
	grid, err := GridFor(1000, 256)
	require.NoError(t, err)
	require.Equal(t, 4, grid.Blocks)
	require.Equal(t, 1024, grid.TotalThreads())
	mem := Alloc(grid, key)
	fresh := sim.SplitStreams(key, grid.TotalThreads())

	// WHEN the kernel runs
	require.NoError(t, runAtomic(context.Background(), NewHostDevice(4), grid, mem, 1000))

	// THEN the 24 padding threads never touched their state
	for id := 1000; id < 1024; id++ {
		assert.Equal(t, fresh[id], *mem.State(id), "padding thread %d drew a sample", id)
	}
	// AND the counters match exactly the first 1000 threads
	hits, samples := mem.ReadBack()
	assert.Equal(t, int64(1000), samples)
	assert.Equal(t, expectedHits(key, 1000), hits)
}

func TestBatchAndAtomicCountIdenticalHits(t *testing.T) {
	// GIVEN the same key and grid
	key := sim.NewSimulationKey(2024)
	grid, err := GridFor(50_001, 128)
	require.NoError(t, err)
	dev := NewHostDevice(4)

	atomicMem := Alloc(grid, key)
	require.NoError(t, runAtomic(context.Background(), dev, grid, atomicMem, 50_001))
	batchMem := Alloc(grid, key)
	require.NoError(t, runBatch(context.Background(), dev, grid, batchMem, 50_001))

	// THEN the bulk elementwise reduction agrees with the atomic counter
	aHits, aSamples := atomicMem.ReadBack()
	bHits, bSamples := batchMem.ReadBack()
	assert.Equal(t, aSamples, bSamples)
	assert.Equal(t, aHits, bHits)
}

func TestRunBatch_RejectsOversizedRun(t *testing.T) {
	grid := Grid{Blocks: 1, ThreadsPerBlock: 1}
	mem := &Memory{}
	err := runBatch(context.Background(), NewHostDevice(1), grid, mem, MaxBatchSamples+1)
	assert.ErrorIs(t, err, sim.ErrInvalidArgument)
}

func TestMemory_FreeReleasesStates(t *testing.T) {
	mem := Alloc(Grid{Blocks: 2, ThreadsPerBlock: 32}, sim.NewSimulationKey(1))
	assert.Equal(t, 64, mem.Threads())
	mem.Free()
	assert.Equal(t, 0, mem.Threads())
}
