package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_TenOverThree(t *testing.T) {
	// GIVEN 10 samples over 3 units
	got, err := Partition(10, 3)

	// THEN the single remainder sample goes to unit 0
	require.NoError(t, err)
	assert.Equal(t, []WorkerAssignment{
		{UnitID: 0, SampleCount: 4},
		{UnitID: 1, SampleCount: 3},
		{UnitID: 2, SampleCount: 3},
	}, got)
}

func TestPartition_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		total SampleCount
		units UnitCount
	}{
		{"zero samples", 0, 4},
		{"negative samples", -5, 4},
		{"zero units", 100, 0},
		{"negative units", 100, -1},
		{"units above cap", 100, MaxUnits + 1},
		{"huge unit count", 10, 1 << 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.total, tt.units)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "want ErrInvalidArgument, got %v", err)
		})
	}
}

func TestPartition_FewerSamplesThanUnits(t *testing.T) {
	// GIVEN 3 samples over 5 units
	got, err := Partition(3, 5)
	require.NoError(t, err)

	// THEN the first 3 units get one sample and the rest get none
	want := []SampleCount{1, 1, 1, 0, 0}
	for i, a := range got {
		assert.Equal(t, i, a.UnitID)
		assert.Equal(t, want[i], a.SampleCount, "unit %d", i)
	}
}

func TestSplitShares_SumAndRemainderPlacement(t *testing.T) {
	// Property: for all total >= 0 and units >= 1, shares sum to total and
	// exactly the first total%units units carry the extra sample.
	for total := SampleCount(0); total <= 60; total++ {
		for units := UnitCount(1); units <= 13; units++ {
			shares := splitShares(total, units)
			require.Len(t, shares, int(units))

			base := total / SampleCount(units)
			remainder := int(total % SampleCount(units))
			var sum SampleCount
			for i, a := range shares {
				sum += a.SampleCount
				assert.Equal(t, i, a.UnitID)
				if i < remainder {
					assert.Equal(t, base+1, a.SampleCount, "total=%d units=%d unit=%d", total, units, i)
				} else {
					assert.Equal(t, base, a.SampleCount, "total=%d units=%d unit=%d", total, units, i)
				}
			}
			assert.Equal(t, total, sum, "total=%d units=%d", total, units)
		}
	}
}

func TestPartition_Deterministic(t *testing.T) {
	a, err := Partition(1_000_003, 7)
	require.NoError(t, err)
	b, err := Partition(1_000_003, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
