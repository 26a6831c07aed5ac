package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/pisim/sim"
	"github.com/inference-sim/pisim/sim/gpu"
)

var (
	// Shared estimator flags
	logLevel        string // Log verbosity level
	seed            int64  // Run seed; unit streams are derived from it
	numWorkers      int    // Worker pool size for cpu-parallel
	threadsPerBlock int    // Block size for gpu
	deviceID        int    // Device id for gpu
	kernelStrategy  string // gpu reduction strategy: atomic or batch

	// run flags
	numSamples  int64  // Total number of points
	configPath  string // Optional YAML run config
	envFilePath string // Optional dotenv file with PISIM_* defaults
	traceLevel  string // none or partials
	resultsPath string // Optional JSON results file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pisim",
	Short: "Monte Carlo estimation of π on sequential, CPU-parallel and GPU substrates",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd estimates π once with the selected algorithm
var runCmd = &cobra.Command{
	Use:       "run [cpu|cpu-parallel|gpu]",
	Short:     "Estimate π with one algorithm",
	Args:      cobra.RangeArgs(0, 1),
	ValidArgs: ValidAlgorithmNames(),
	Run: func(cmd *cobra.Command, args []string) {
		algorithm := ""
		if len(args) == 1 {
			algorithm = args[0]
		}

		if configPath != "" {
			cfg, err := LoadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("Failed to load run config: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				logrus.Fatalf("Invalid run config %s: %v", configPath, err)
			}
			if err := applyFlagDefaults(cmd, cfg.FlagValues()); err != nil {
				logrus.Fatalf("Failed to apply run config: %v", err)
			}
			if algorithm == "" {
				algorithm = cfg.Algorithm
			}
		}
		if envFilePath != "" {
			envAlgorithm, err := applyEnvFile(cmd, envFilePath)
			if err != nil {
				logrus.Fatalf("Failed to apply env file: %v", err)
			}
			if algorithm == "" {
				algorithm = envAlgorithm
			}
		}
		if algorithm == "" {
			logrus.Fatalf("Algorithm not provided; choose one of %v", ValidAlgorithmNames())
		}

		opts := runOptions{
			Algorithm:       algorithm,
			NumSamples:      numSamples,
			NumWorkers:      numWorkers,
			ThreadsPerBlock: threadsPerBlock,
			DeviceID:        deviceID,
			Seed:            seed,
			Kernel:          kernelStrategy,
			Trace:           traceLevel,
		}
		logrus.Infof("Starting estimation: algorithm=%s samples=%d seed=%d", opts.Algorithm, opts.NumSamples, opts.Seed)

		out, err := runEstimate(context.Background(), opts)
		if err != nil {
			logrus.Fatalf("An error occurred: %v", err)
		}
		out.Print(os.Stdout)
		if resultsPath != "" {
			if err := out.Save(resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}
		logrus.Info("Estimation complete.")
	},
}

// runEstimate validates opts, builds the engine and times one estimate.
func runEstimate(ctx context.Context, opts runOptions) (*RunOutput, error) {
	out := newRunOutput(opts)
	observer := out.Trace.Observer()

	estimator, err := newEstimator(opts, opts.Seed, observer)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := estimator.Estimate(ctx, sim.SampleCount(opts.NumSamples))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Algorithm, err)
	}
	out.finish(res, time.Since(start))
	return out, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", sim.DefaultSeed, "Run seed; every execution unit's stream is derived from it")
	rootCmd.PersistentFlags().IntVar(&numWorkers, "num-workers", runtime.NumCPU(), "Number of parallel workers (cpu-parallel)")
	rootCmd.PersistentFlags().IntVar(&threadsPerBlock, "threads-per-block", gpu.DefaultThreadsPerBlock, "Number of threads per block (gpu)")
	rootCmd.PersistentFlags().IntVar(&deviceID, "device", 0, "Device id (gpu); list them with the devices command")
	rootCmd.PersistentFlags().StringVar(&kernelStrategy, "kernel", string(gpu.StrategyAtomic), "Kernel reduction strategy (gpu): atomic or batch")

	runCmd.Flags().Int64Var(&numSamples, "num-samples", 1000000, "The number of samples to use for the estimation")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run config; explicit flags take precedence")
	runCmd.Flags().StringVar(&envFilePath, "env-file", "", "dotenv file with PISIM_* defaults for the algorithm and flags not otherwise set")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, partials)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write results as JSON to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(convergeCmd)
}
