package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/pisim/sim/gpu"
	"github.com/inference-sim/pisim/sim/trace"
)

// RunConfig is a YAML file of run parameters.
// Nil pointer fields mean "not set in YAML" and leave the flag default alone.
// String fields use empty string for "not set".
type RunConfig struct {
	Algorithm       string `yaml:"algorithm"`
	NumSamples      *int64 `yaml:"num_samples"`
	NumWorkers      *int   `yaml:"num_workers"`
	ThreadsPerBlock *int   `yaml:"threads_per_block"`
	Device          *int   `yaml:"device"`
	Seed            *int64 `yaml:"seed"`
	Kernel          string `yaml:"kernel"`
	Trace           string `yaml:"trace"`
}

// LoadRunConfig reads a run config with strict field checking: unknown keys
// are errors, so a typo never silently falls back to a default.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var cfg RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &cfg, nil
}

// Validate checks names and ranges of every field that is set.
func (c *RunConfig) Validate() error {
	if c.Algorithm != "" && !validAlgorithms[c.Algorithm] {
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if !gpu.ValidStrategies[c.Kernel] {
		return fmt.Errorf("unknown kernel strategy %q", c.Kernel)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	if c.NumSamples != nil && *c.NumSamples <= 0 {
		return fmt.Errorf("num_samples must be positive, got %d", *c.NumSamples)
	}
	if c.NumWorkers != nil && *c.NumWorkers <= 0 {
		return fmt.Errorf("num_workers must be positive, got %d", *c.NumWorkers)
	}
	if c.ThreadsPerBlock != nil && *c.ThreadsPerBlock <= 0 {
		return fmt.Errorf("threads_per_block must be positive, got %d", *c.ThreadsPerBlock)
	}
	if c.Device != nil && *c.Device < 0 {
		return fmt.Errorf("device must be non-negative, got %d", *c.Device)
	}
	return nil
}

// FlagValues maps every set field to its flag name and string value.
func (c *RunConfig) FlagValues() map[string]string {
	values := make(map[string]string)
	if c.NumSamples != nil {
		values["num-samples"] = strconv.FormatInt(*c.NumSamples, 10)
	}
	if c.NumWorkers != nil {
		values["num-workers"] = strconv.Itoa(*c.NumWorkers)
	}
	if c.ThreadsPerBlock != nil {
		values["threads-per-block"] = strconv.Itoa(*c.ThreadsPerBlock)
	}
	if c.Device != nil {
		values["device"] = strconv.Itoa(*c.Device)
	}
	if c.Seed != nil {
		values["seed"] = strconv.FormatInt(*c.Seed, 10)
	}
	if c.Kernel != "" {
		values["kernel"] = c.Kernel
	}
	if c.Trace != "" {
		values["trace"] = c.Trace
	}
	return values
}

// applyFlagDefaults sets each named flag that was not given on the command
// line. Flags it sets count as changed, so a later, lower-precedence source
// cannot override them.
func applyFlagDefaults(cmd *cobra.Command, values map[string]string) error {
	for name, value := range values {
		if cmd.Flags().Lookup(name) == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if cmd.Flags().Changed(name) {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("flag %s=%q: %w", name, value, err)
		}
	}
	return nil
}
