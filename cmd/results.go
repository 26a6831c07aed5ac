package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/inference-sim/pisim/sim"
	"github.com/inference-sim/pisim/sim/trace"
)

// RunOutput is what the run command reports for one estimate.
type RunOutput struct {
	RunID           string               `json:"run_id"`
	Algorithm       string               `json:"algorithm"`
	Seed            int64                `json:"seed"`
	NumWorkers      int                  `json:"num_workers,omitempty"`
	ThreadsPerBlock int                  `json:"threads_per_block,omitempty"`
	DeviceID        *int                 `json:"device_id,omitempty"`
	Kernel          string               `json:"kernel,omitempty"`
	Result          sim.EstimationResult `json:"result"`
	AbsError        float64              `json:"abs_error"`
	ElapsedSeconds  float64              `json:"elapsed_seconds"`
	Trace           *trace.RunTrace      `json:"trace,omitempty"`
	TraceSummary    *trace.TraceSummary  `json:"trace_summary,omitempty"`
}

func newRunOutput(opts runOptions) *RunOutput {
	out := &RunOutput{
		RunID:     uuid.NewString(),
		Algorithm: opts.Algorithm,
		Seed:      opts.Seed,
	}
	switch opts.Algorithm {
	case AlgorithmCPUParallel:
		out.NumWorkers = opts.NumWorkers
	case AlgorithmGPU:
		id := opts.DeviceID
		out.DeviceID = &id
		out.ThreadsPerBlock = opts.ThreadsPerBlock
		out.Kernel = opts.Kernel
	}
	if trace.TraceLevel(opts.Trace) == trace.TraceLevelPartials {
		out.Trace = trace.NewRunTrace(trace.TraceLevelPartials)
	}
	return out
}

func (o *RunOutput) finish(res sim.EstimationResult, elapsed time.Duration) {
	o.Result = res
	o.AbsError = math.Abs(res.PiEstimate - math.Pi)
	o.ElapsedSeconds = elapsed.Seconds()
	if o.Trace != nil {
		o.TraceSummary = trace.Summarize(o.Trace)
	}
}

// Print writes the human-readable summary.
func (o *RunOutput) Print(w io.Writer) {
	fmt.Fprintf(w, "Algorithm: %s\n", o.Algorithm)
	fmt.Fprintf(w, "Estimated value of PI: %v\n", o.Result.PiEstimate)
	fmt.Fprintf(w, "Execution time: %.4f seconds\n", o.ElapsedSeconds)
	if s := o.TraceSummary; s != nil {
		fmt.Fprintf(w, "Units: %d (shares %d..%d, %d empty), hit ratio %.6f ± %.6f\n",
			s.Units, s.MinShare, s.MaxShare, s.ZeroShareUnits, s.MeanHitRatio, s.StdDevHitRatio)
	}
}

// Save writes the output as indented JSON.
func (o *RunOutput) Save(path string) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
