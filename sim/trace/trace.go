package trace

import "github.com/inference-sim/pisim/sim"

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPartials records every merged PartialResult.
	TraceLevelPartials TraceLevel = "partials"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelPartials: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// RunTrace collects partial records during one run.
type RunTrace struct {
	Level    TraceLevel      `json:"level"`
	Partials []PartialRecord `json:"partials"`
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(level TraceLevel) *RunTrace {
	return &RunTrace{
		Level:    level,
		Partials: make([]PartialRecord, 0),
	}
}

// Record appends a partial in merge order. It is a no-op unless the level is partials.
func (rt *RunTrace) Record(p sim.PartialResult) {
	if rt.Level != TraceLevelPartials {
		return
	}
	rt.Partials = append(rt.Partials, PartialRecord{
		Order:   len(rt.Partials),
		UnitID:  p.UnitID,
		Hits:    p.Hits,
		Samples: int64(p.SamplesProcessed),
	})
}

// Observer adapts Record to a sim.Observer. Returns nil for a nil trace so
// engines skip the callback entirely.
func (rt *RunTrace) Observer() sim.Observer {
	if rt == nil || rt.Level != TraceLevelPartials {
		return nil
	}
	return rt.Record
}
