package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === Xoroshiro128Plus Tests ===

func TestXoroshiro128Plus_Float64InUnitInterval(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, math.MaxUint64} {
		x := NewXoroshiro128Plus(seed)
		for i := 0; i < 10000; i++ {
			v := x.Float64()
			if v < 0 || v >= 1 {
				t.Fatalf("seed %d draw %d: Float64() = %v, want [0, 1)", seed, i, v)
			}
		}
	}
}

func TestXoroshiro128Plus_SeedIsReproducible(t *testing.T) {
	a := NewXoroshiro128Plus(1234)
	b := NewXoroshiro128Plus(1234)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "draw %d", i)
	}
}

func TestXoroshiro128Plus_WorksAsRandSource(t *testing.T) {
	// GIVEN the generator wrapped in a math/rand.Rand
	src := NewXoroshiro128Plus(0)
	src.Seed(77)
	r := rand.New(src)

	// THEN Rand draws from it and stays in range
	for i := 0; i < 1000; i++ {
		v := r.Intn(10)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
}

func TestXoroshiro128Plus_JumpChangesState(t *testing.T) {
	x := NewXoroshiro128Plus(5)
	before := *x
	x.Jump()
	assert.NotEqual(t, before, *x)
}

func TestXoroshiro128Plus_KnownOutputs(t *testing.T) {
	// GIVEN the state {1, 2}
	x := Xoroshiro128Plus{s0: 1, s1: 2}

	// THEN the first draws match the reference xoroshiro128+ (24, 16, 37)
	want := []uint64{
		0x0000000000000003,
		0x0000006001030003,
		0x20c102c302000c03,
		0x810180670d23ad61,
		0x26d13a4941333a42,
	}
	for i, w := range want {
		assert.Equal(t, w, x.Uint64(), "draw %d", i)
	}
}

func TestXoroshiro128Plus_KnownJump(t *testing.T) {
	// GIVEN the state {1, 2} advanced by one jump (2^64 draws)
	x := Xoroshiro128Plus{s0: 1, s1: 2}
	x.Jump()

	// THEN state and following draws match the reference jump
	assert.Equal(t, Xoroshiro128Plus{s0: 0x66fbd4be1df0a7b5, s1: 0x830c3ddbb4aa3172}, x)
	for i, w := range []uint64{0xea081299d29ad927, 0xdde2899549f899c8, 0xe9fbdbe2a1bfda9c} {
		assert.Equal(t, w, x.Uint64(), "draw %d after jump", i)
	}
}

func TestXoroshiro128Plus_KnownSeeding(t *testing.T) {
	// SplitMix64 from 0 starts 0xe220a8397b1dcdaf, 0x6e789e6aa1b965f4
	sm := uint64(0)
	assert.Equal(t, uint64(0xe220a8397b1dcdaf), splitmix64(&sm))
	assert.Equal(t, uint64(0x6e789e6aa1b965f4), splitmix64(&sm))

	x := NewXoroshiro128Plus(1)
	assert.Equal(t, Xoroshiro128Plus{s0: 0x910a2dec89025cc1, s1: 0xbeeb8da1658eec67}, *x)
	assert.Equal(t, uint64(0x4ff5bb8dee914928), x.Uint64())
}

func TestXoroshiro128Plus_MeanNearHalf(t *testing.T) {
	x := NewXoroshiro128Plus(2024)
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += x.Float64()
	}
	// stddev of the mean is sqrt(1/12/n) ~ 0.00065
	assert.InDelta(t, 0.5, sum/n, 0.005)
}

// === SplitStreams Tests ===

func TestSplitStreams_MatchesPartitionedRNG(t *testing.T) {
	// GIVEN the same key
	key := NewSimulationKey(1)
	states := SplitStreams(key, 16)
	rng := NewPartitionedRNG(key)

	// THEN thread i and unit i own the same starting state
	for i := range states {
		assert.Equal(t, states[i], *rng.ForUnit(i), "stream %d", i)
	}
}

func TestSplitStreams_NoSharedSubsequence(t *testing.T) {
	// GIVEN 8 streams drawn 2000 times each
	states := SplitStreams(NewSimulationKey(3), 8)
	seen := make(map[uint64]int)

	// THEN no 64-bit output appears in two streams
	for id := range states {
		for i := 0; i < 2000; i++ {
			v := states[id].Uint64()
			if other, ok := seen[v]; ok && other != id {
				t.Fatalf("value %x drawn by streams %d and %d", v, other, id)
			}
			seen[v] = id
		}
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+unit produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForUnit(3).Float64()
		v2 := rng2.ForUnit(3).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_OrderIndependent(t *testing.T) {
	// BDD: requesting units in a different order yields the same streams
	forward := NewPartitionedRNG(NewSimulationKey(8))
	backward := NewPartitionedRNG(NewSimulationKey(8))

	want := make([]Xoroshiro128Plus, 6)
	for i := 0; i < 6; i++ {
		want[i] = *forward.ForUnit(i)
	}
	for i := 5; i >= 0; i-- {
		assert.Equal(t, want[i], *backward.ForUnit(i), "unit %d", i)
	}
}

func TestPartitionedRNG_UnitIsolation(t *testing.T) {
	// BDD: Drawing from unit A doesn't affect unit B
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForUnit(0).Float64()
	}
	aFirst := rngA.ForUnit(1).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	assert.Equal(t, fresh.ForUnit(1).Float64(), aFirst, "isolation broken")
}

func TestPartitionedRNG_DistinctUnitsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	assert.NotEqual(t, rng.ForUnit(0).Uint64(), rng.ForUnit(1).Uint64())
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForUnit(2) != rng.ForUnit(2) {
		t.Error("ForUnit returned different instances for same id")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	if rng.Key() != SimulationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_NegativeUnitPanics(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(1))
	assert.Panics(t, func() { rng.ForUnit(-1) })
}

// === FixedStream Tests ===

func TestFixedStream_ReplaysThenExhausts(t *testing.T) {
	s := NewFixedStream([2]float64{0.25, 0.75})
	x, y, err := s.NextPair()
	require.NoError(t, err)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, 0.75, y)

	_, _, err = s.NextPair()
	assert.ErrorIs(t, err, ErrStreamExhausted)
}

// === Benchmark ===

func BenchmarkXoroshiro128Plus_NextPair(b *testing.B) {
	x := NewXoroshiro128Plus(1)
	for i := 0; i < b.N; i++ {
		_, _, _ = x.NextPair()
	}
}

func BenchmarkSplitStreams_1024(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SplitStreams(NewSimulationKey(1), 1024)
	}
}
