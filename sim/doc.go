// Package sim provides the Monte Carlo estimation engine for π.
//
// # Reading Guide
//
// Start with these files to understand the estimation kernel:
//   - partition.go: splitting a SampleCount across execution units
//   - rng.go: per-unit random streams derived from one SimulationKey
//   - accumulator.go: counting hits for one unit's share
//   - reducer.go: merging PartialResults into an EstimationResult
//
// # Architecture
//
// The sim package defines the shared partition/reduce contract and the
// sequential engine; the other substrates live in sub-packages:
//   - sim/parallel/: CPU worker pool (one goroutine per execution unit)
//   - sim/gpu/: device registry, grid sizing and kernel dispatch
//   - sim/trace/: per-run record of merged partials
//   - sim/convergence/: repeated seeded runs over growing sample sizes
//
// Every engine implements Estimator. No engine prints, times, or exits;
// those belong to the cmd package.
package sim
