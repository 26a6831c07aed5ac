package gpu

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/pisim/sim"
)

// Memory is the device-side allocation for one run: one generator state per
// thread and the shared counters that threads update atomically.
// It is allocated once per run and freed after the host reads it back.
type Memory struct {
	states  []sim.Xoroshiro128Plus
	hits    atomic.Int64
	samples atomic.Int64
}

// Alloc sizes device memory for grid. Thread i's state is the key's base
// state jumped i times, so no two threads replay the same sub-sequence.
func Alloc(grid Grid, key sim.SimulationKey) *Memory {
	return &Memory{states: sim.SplitStreams(key, grid.TotalThreads())}
}

// State returns the generator owned by thread id.
func (m *Memory) State(id int) *sim.Xoroshiro128Plus {
	return &m.states[id]
}

// Threads is the number of allocated generator states.
func (m *Memory) Threads() int {
	return len(m.states)
}

// AddHits atomically adds to the shared hit counter.
func (m *Memory) AddHits(n int64) {
	m.hits.Add(n)
}

// AddSamples atomically adds to the shared processed-sample counter.
func (m *Memory) AddSamples(n int64) {
	m.samples.Add(n)
}

// ReadBack copies the counters to the host. Call it only after the launch
// has returned.
func (m *Memory) ReadBack() (hits int64, samples int64) {
	return m.hits.Load(), m.samples.Load()
}

// Free releases the generator states. State panics after Free; the
// counters stay readable.
func (m *Memory) Free() {
	logrus.Debugf("gpu: freeing %d RNG states", len(m.states))
	m.states = nil
}
