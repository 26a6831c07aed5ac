package sim

import "fmt"

// MaxUnits caps the execution units of one run.
const MaxUnits = 1 << 16

// Partition divides total samples into units contiguous shares.
//
// The first total%units assignments (by ascending UnitID) receive one sample
// more than the rest. Shares always sum to total exactly; when total < units
// the trailing units legitimately receive zero samples.
func Partition(total SampleCount, units UnitCount) ([]WorkerAssignment, error) {
	if total <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d: %w", total, ErrInvalidArgument)
	}
	if units <= 0 {
		return nil, fmt.Errorf("unit count must be positive, got %d: %w", units, ErrInvalidArgument)
	}
	if units > MaxUnits {
		return nil, fmt.Errorf("unit count %d exceeds %d: %w", units, MaxUnits, ErrInvalidArgument)
	}
	return splitShares(total, units), nil
}

// splitShares does the share arithmetic without validation.
// Requires total >= 0 and units >= 1.
func splitShares(total SampleCount, units UnitCount) []WorkerAssignment {
	base := total / SampleCount(units)
	remainder := int(total % SampleCount(units))

	assignments := make([]WorkerAssignment, units)
	for i := range assignments {
		share := base
		if i < remainder {
			share++
		}
		assignments[i] = WorkerAssignment{UnitID: i, SampleCount: share}
	}
	return assignments
}
