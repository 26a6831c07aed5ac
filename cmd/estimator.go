package cmd

import (
	"fmt"

	"github.com/inference-sim/pisim/sim"
	"github.com/inference-sim/pisim/sim/gpu"
	"github.com/inference-sim/pisim/sim/parallel"
	"github.com/inference-sim/pisim/sim/trace"
)

// Algorithm names accepted on the command line.
const (
	AlgorithmCPU         = "cpu"
	AlgorithmCPUParallel = "cpu-parallel"
	AlgorithmGPU         = "gpu"
)

// validAlgorithms is the set of recognized algorithm names.
var validAlgorithms = map[string]bool{AlgorithmCPU: true, AlgorithmCPUParallel: true, AlgorithmGPU: true}

// ValidAlgorithmNames lists the algorithms in display order.
func ValidAlgorithmNames() []string {
	return []string{AlgorithmCPU, AlgorithmCPUParallel, AlgorithmGPU}
}

// runOptions carries everything needed to build and run one estimator.
type runOptions struct {
	Algorithm       string
	NumSamples      int64
	NumWorkers      int
	ThreadsPerBlock int
	DeviceID        int
	Seed            int64
	Kernel          string
	Trace           string
}

// newEstimator builds the engine for opts.Algorithm. seed overrides
// opts.Seed so that repeated studies can vary it per run.
func newEstimator(opts runOptions, seed int64, observer sim.Observer) (sim.Estimator, error) {
	if !trace.IsValidTraceLevel(opts.Trace) {
		return nil, fmt.Errorf("unknown trace level %q: %w", opts.Trace, sim.ErrInvalidArgument)
	}
	switch opts.Algorithm {
	case AlgorithmCPU:
		return &sim.SequentialEngine{Seed: seed, Observer: observer}, nil
	case AlgorithmCPUParallel:
		return &parallel.Engine{Workers: opts.NumWorkers, Seed: seed, Observer: observer}, nil
	case AlgorithmGPU:
		return &gpu.Engine{
			ThreadsPerBlock: opts.ThreadsPerBlock,
			DeviceID:        opts.DeviceID,
			Seed:            seed,
			Strategy:        gpu.Strategy(opts.Kernel),
			Observer:        observer,
		}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q, want one of %v: %w", opts.Algorithm, ValidAlgorithmNames(), sim.ErrInvalidArgument)
	}
}
