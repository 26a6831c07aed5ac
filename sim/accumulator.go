package sim

import "fmt"

// Inside reports whether (x, y) lies in the closed unit disk.
// Points exactly on the circle count as hits.
//
// The explicit conversions stop the compiler from fusing the expression into
// an FMA, so every substrate (including bulk elementwise kernels) rounds the
// same way.
func Inside(x, y float64) bool {
	return float64(x*x)+float64(y*y) <= 1
}

// Accumulate draws count pairs from stream and counts the hits.
// It touches no state outside its arguments; the only output is the
// returned PartialResult. A stream that runs dry fails the unit.
func Accumulate(unitID int, stream RandomStream, count SampleCount) (PartialResult, error) {
	var hits int64
	for i := SampleCount(0); i < count; i++ {
		x, y, err := stream.NextPair()
		if err != nil {
			return PartialResult{}, fmt.Errorf("unit %d after %d of %d samples: %w: %w", unitID, i, count, ErrUnitFailed, err)
		}
		if Inside(x, y) {
			hits++
		}
	}
	return PartialResult{UnitID: unitID, Hits: hits, SamplesProcessed: count}, nil
}
