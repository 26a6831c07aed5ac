// Package convergence measures how the estimate's error shrinks as the
// sample count grows, over repeated seeded runs.
package convergence

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/pisim/sim"
)

// Factory builds the Estimator used for one repeat.
type Factory func(seed int64) sim.Estimator

// Study runs Repeats estimates at each size in Sizes. Repeat r uses
// seed Seed+r at every size, so the study itself is reproducible.
type Study struct {
	Sizes        []sim.SampleCount
	Repeats      int
	Seed         int64
	NewEstimator Factory
}

// Point summarizes the repeats at one sample size.
type Point struct {
	Samples        sim.SampleCount `json:"samples"`
	Repeats        int             `json:"repeats"`
	MeanEstimate   float64         `json:"mean_estimate"`
	StdDevEstimate float64         `json:"stddev_estimate"`
	MeanAbsError   float64         `json:"mean_abs_error"`
	MedianAbsError float64         `json:"median_abs_error"`
}

// Validate checks the study parameters.
func (s Study) Validate() error {
	if len(s.Sizes) == 0 {
		return fmt.Errorf("at least one sample size is required: %w", sim.ErrInvalidArgument)
	}
	for i, n := range s.Sizes {
		if n <= 0 {
			return fmt.Errorf("sample size %d must be positive, got %d: %w", i, n, sim.ErrInvalidArgument)
		}
		if i > 0 && n <= s.Sizes[i-1] {
			return fmt.Errorf("sample sizes must be strictly increasing, got %d after %d: %w", n, s.Sizes[i-1], sim.ErrInvalidArgument)
		}
	}
	if s.Repeats < 2 {
		return fmt.Errorf("at least 2 repeats are required, got %d: %w", s.Repeats, sim.ErrInvalidArgument)
	}
	if s.NewEstimator == nil {
		return fmt.Errorf("no estimator factory: %w", sim.ErrInvalidArgument)
	}
	return nil
}

// Run executes the study. Any failed estimate fails the whole study.
func (s Study) Run(ctx context.Context) ([]Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(s.Sizes))
	for _, n := range s.Sizes {
		estimates := make([]float64, s.Repeats)
		absErrs := make([]float64, s.Repeats)
		for r := 0; r < s.Repeats; r++ {
			res, err := s.NewEstimator(s.Seed+int64(r)).Estimate(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("size %d repeat %d: %w", n, r, err)
			}
			estimates[r] = res.PiEstimate
			absErrs[r] = math.Abs(res.PiEstimate - math.Pi)
		}

		mean, std := stat.MeanStdDev(estimates, nil)
		median, err := stats.Median(absErrs)
		if err != nil {
			return nil, fmt.Errorf("size %d: %w", n, err)
		}
		p := Point{
			Samples:        n,
			Repeats:        s.Repeats,
			MeanEstimate:   mean,
			StdDevEstimate: std,
			MeanAbsError:   stat.Mean(absErrs, nil),
			MedianAbsError: median,
		}
		logrus.Infof("convergence: n=%d mean=%.6f mae=%.6f", n, p.MeanEstimate, p.MeanAbsError)
		points = append(points, p)
	}
	return points, nil
}

// DecadeSizes returns 10^from, 10^(from+1), ..., 10^to.
func DecadeSizes(from, to int) []sim.SampleCount {
	var sizes []sim.SampleCount
	for e := from; e <= to; e++ {
		sizes = append(sizes, sim.SampleCount(math.Round(math.Pow(10, float64(e)))))
	}
	return sizes
}
