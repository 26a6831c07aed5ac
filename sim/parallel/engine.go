// Package parallel runs the estimator across a fixed-size pool of workers,
// one independent execution unit per worker.
package parallel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/pisim/sim"
)

// task is one WorkerAssignment bundled with the stream that unit owns.
type task struct {
	assignment sim.WorkerAssignment
	stream     sim.RandomStream
}

// Engine splits a run into Workers units and drains them through a task
// queue. Each worker owns the stream of the unit it is running and reports
// one PartialResult; the collecting goroutine merges them as they arrive.
type Engine struct {
	Workers  int
	Seed     int64
	Observer sim.Observer

	// streamFor overrides per-unit stream construction (tests only).
	streamFor func(unitID int) sim.RandomStream
}

// NewEngine creates an Engine with the given pool size and seed.
func NewEngine(workers int, seed int64) *Engine {
	return &Engine{Workers: workers, Seed: seed}
}

// Estimate implements sim.Estimator.
//
// If any unit fails, or ctx is cancelled before every unit reports, the
// whole run is discarded and no estimate is returned.
func (e *Engine) Estimate(ctx context.Context, total sim.SampleCount) (sim.EstimationResult, error) {
	if e.Workers <= 0 {
		return sim.EstimationResult{}, fmt.Errorf("worker count must be positive, got %d: %w", e.Workers, sim.ErrInvalidArgument)
	}
	assignments, err := sim.Partition(total, sim.UnitCount(e.Workers))
	if err != nil {
		return sim.EstimationResult{}, err
	}

	// Streams are derived here, before any worker starts, so no generator
	// state is ever shared or inherited between units.
	tasks := make(chan task, len(assignments))
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(e.Seed))
	for _, a := range assignments {
		var stream sim.RandomStream
		if e.streamFor != nil {
			stream = e.streamFor(a.UnitID)
		} else {
			stream = rng.ForUnit(a.UnitID)
		}
		tasks <- task{assignment: a, stream: stream}
	}
	close(tasks)

	logrus.Debugf("cpu-parallel: %d samples over %d workers, seed=%d", total, e.Workers, e.Seed)

	results := make(chan sim.PartialResult, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < e.Workers; w++ {
		g.Go(func() error {
			return work(gctx, tasks, results)
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	reducer := sim.NewReducer(e.Observer)
	var mergeErr error
	for partial := range results {
		if mergeErr != nil {
			continue
		}
		mergeErr = reducer.Merge(partial)
	}

	if waitErr != nil {
		return sim.EstimationResult{}, fmt.Errorf("cpu-parallel run aborted after %d of %d units: %w",
			reducer.Merged(), len(assignments), waitErr)
	}
	if mergeErr != nil {
		return sim.EstimationResult{}, mergeErr
	}
	return reducer.Result(total)
}

// work drains the task queue until it is empty or the run is cancelled.
func work(ctx context.Context, tasks <-chan task, results chan<- sim.PartialResult) error {
	for t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		partial, err := runUnit(t)
		if err != nil {
			return err
		}
		results <- partial
	}
	return nil
}

// runUnit executes one unit, turning a panic into ErrUnitFailed.
func runUnit(t task) (partial sim.PartialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unit %d panicked: %v: %w", t.assignment.UnitID, r, sim.ErrUnitFailed)
		}
	}()
	return sim.Accumulate(t.assignment.UnitID, t.stream, t.assignment.SampleCount)
}

// EstimateCPUParallel estimates π from numSamples points split across
// numWorkers workers, using sim.DefaultSeed.
func EstimateCPUParallel(numSamples int64, numWorkers int) (float64, error) {
	if numWorkers <= 0 {
		return 0, fmt.Errorf("worker count must be positive, got %d: %w", numWorkers, sim.ErrInvalidArgument)
	}
	res, err := NewEngine(numWorkers, sim.DefaultSeed).Estimate(context.Background(), sim.SampleCount(numSamples))
	if err != nil {
		return 0, err
	}
	return res.PiEstimate, nil
}
