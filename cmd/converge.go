package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/pisim/sim"
	"github.com/inference-sim/pisim/sim/convergence"
)

var (
	convergeAlgorithm   string // Algorithm under study
	convergeFromExp     int    // Smallest sample size is 10^from
	convergeToExp       int    // Largest sample size is 10^to
	convergeRepeats     int    // Seeded runs per size
	convergeResultsPath string // Optional JSON results file
)

// convergeCmd runs repeated seeded estimates over growing sample sizes
var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Measure how the estimate's error shrinks as the sample count grows",
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions{
			Algorithm:       convergeAlgorithm,
			NumWorkers:      numWorkers,
			ThreadsPerBlock: threadsPerBlock,
			DeviceID:        deviceID,
			Seed:            seed,
			Kernel:          kernelStrategy,
		}
		points, err := runConvergence(context.Background(), opts, convergeFromExp, convergeToExp, convergeRepeats)
		if err != nil {
			logrus.Fatalf("Convergence study failed: %v", err)
		}
		printConvergence(os.Stdout, opts.Algorithm, points)
		if convergeResultsPath != "" {
			data, err := json.MarshalIndent(points, "", "  ")
			if err != nil {
				logrus.Fatalf("Failed to encode results: %v", err)
			}
			if err := os.WriteFile(convergeResultsPath, data, 0644); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}
	},
}

// runConvergence builds a study over 10^from..10^to for opts.Algorithm.
func runConvergence(ctx context.Context, opts runOptions, from, to, repeats int) ([]convergence.Point, error) {
	if from < 0 || to < from || to > 12 {
		return nil, fmt.Errorf("exponent range [%d, %d] must satisfy 0 <= from <= to <= 12: %w", from, to, sim.ErrInvalidArgument)
	}
	// fail fast on a bad algorithm before the first repeat
	if _, err := newEstimator(opts, opts.Seed, nil); err != nil {
		return nil, err
	}
	study := convergence.Study{
		Sizes:   convergence.DecadeSizes(from, to),
		Repeats: repeats,
		Seed:    opts.Seed,
		NewEstimator: func(s int64) sim.Estimator {
			est, _ := newEstimator(opts, s, nil)
			return est
		},
	}
	return study.Run(ctx)
}

func printConvergence(w io.Writer, algorithm string, points []convergence.Point) {
	fmt.Fprintf(w, "Algorithm: %s\n", algorithm)
	fmt.Fprintf(w, "%14s %8s %14s %14s %14s %14s\n", "samples", "repeats", "mean", "stddev", "mean |err|", "median |err|")
	for _, p := range points {
		fmt.Fprintf(w, "%14d %8d %14.8f %14.8f %14.8f %14.8f\n",
			p.Samples, p.Repeats, p.MeanEstimate, p.StdDevEstimate, p.MeanAbsError, p.MedianAbsError)
	}
}

func init() {
	convergeCmd.Flags().StringVar(&convergeAlgorithm, "algorithm", AlgorithmCPUParallel, "Algorithm to study (cpu, cpu-parallel, gpu)")
	convergeCmd.Flags().IntVar(&convergeFromExp, "from", 3, "Smallest sample size as a power of ten")
	convergeCmd.Flags().IntVar(&convergeToExp, "to", 6, "Largest sample size as a power of ten")
	convergeCmd.Flags().IntVar(&convergeRepeats, "repeats", 10, "Seeded runs per sample size")
	convergeCmd.Flags().StringVar(&convergeResultsPath, "results-path", "", "Write results as JSON to this file")
}
