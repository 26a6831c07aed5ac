package sim

import (
	"math/bits"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible run.
// Two runs with the same SimulationKey, sample count and unit count
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === RandomStream ===

// RandomStream produces uniform pairs over [0,1)² for exactly one execution unit.
type RandomStream interface {
	NextPair() (x, y float64, err error)
}

// === Xoroshiro128Plus ===

// jumpPoly advances a xoroshiro128+ state by 2^64 steps.
var jumpPoly = [2]uint64{0xdf900294d8f554a5, 0x170865df4b3201fc}

// Xoroshiro128Plus is a xoroshiro128+ generator (24, 16, 37) with jump-ahead.
// Streams produced by successive Jump calls never overlap for 2^64 draws.
type Xoroshiro128Plus struct {
	s0, s1 uint64
}

var (
	_ rand.Source64 = (*Xoroshiro128Plus)(nil)
	_ RandomStream  = (*Xoroshiro128Plus)(nil)
)

// NewXoroshiro128Plus seeds a generator by SplitMix64 expansion of seed.
func NewXoroshiro128Plus(seed uint64) *Xoroshiro128Plus {
	x := &Xoroshiro128Plus{}
	x.seed(seed)
	return x
}

func (x *Xoroshiro128Plus) seed(seed uint64) {
	sm := seed
	x.s0 = splitmix64(&sm)
	x.s1 = splitmix64(&sm)
	if x.s0 == 0 && x.s1 == 0 {
		// the all-zero state is a fixed point
		x.s0 = 0x9e3779b97f4a7c15
	}
}

// Seed implements rand.Source.
func (x *Xoroshiro128Plus) Seed(seed int64) {
	x.seed(uint64(seed))
}

// Uint64 implements rand.Source64.
func (x *Xoroshiro128Plus) Uint64() uint64 {
	s0, s1 := x.s0, x.s1
	result := s0 + s1
	s1 ^= s0
	x.s0 = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	x.s1 = bits.RotateLeft64(s1, 37)
	return result
}

// Int63 implements rand.Source.
func (x *Xoroshiro128Plus) Int63() int64 {
	return int64(x.Uint64() >> 1)
}

// Float64 returns a uniform value in [0,1) built from the top 53 bits.
func (x *Xoroshiro128Plus) Float64() float64 {
	const inv53 = 1.0 / (1 << 53)
	return float64(x.Uint64()>>11) * inv53
}

// NextPair implements RandomStream. It never fails.
func (x *Xoroshiro128Plus) NextPair() (float64, float64, error) {
	return x.Float64(), x.Float64(), nil
}

// Jump advances the state by 2^64 draws.
func (x *Xoroshiro128Plus) Jump() {
	var t0, t1 uint64
	for _, word := range jumpPoly {
		for b := 0; b < 64; b++ {
			if word&(1<<uint(b)) != 0 {
				t0 ^= x.s0
				t1 ^= x.s1
			}
			x.Uint64()
		}
	}
	x.s0, x.s1 = t0, t1
}

// splitmix64 advances state and returns the next SplitMix64 output.
func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// SplitStreams returns n generator states for stream ids 0..n-1.
// State i is the key's base state jumped i times, so state i and state j
// replay disjoint sub-sequences for any i != j. The result is one contiguous
// slice so a device can own it as a single allocation.
func SplitStreams(key SimulationKey, n int) []Xoroshiro128Plus {
	states := make([]Xoroshiro128Plus, n)
	cur := *NewXoroshiro128Plus(uint64(key))
	for i := range states {
		states[i] = cur
		cur.Jump()
	}
	return states
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated random streams per execution unit.
//
// Derivation: unit N receives the key's base xoroshiro128+ state advanced by
// N jumps of 2^64 draws. The stream for a unit depends only on (key, N), never
// on the order in which units are requested.
//
// Thread-safety: NOT thread-safe. Engines derive every stream on the
// orchestrating goroutine and hand each one to exactly one unit.
type PartitionedRNG struct {
	key   SimulationKey
	base  Xoroshiro128Plus
	units map[int]*Xoroshiro128Plus

	// frontier is base jumped frontierID times; sequential ForUnit calls
	// cost one jump each instead of N.
	frontier   Xoroshiro128Plus
	frontierID int
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	base := *NewXoroshiro128Plus(uint64(key))
	return &PartitionedRNG{
		key:      key,
		base:     base,
		units:    make(map[int]*Xoroshiro128Plus),
		frontier: base,
	}
}

// ForUnit returns the stream for the given unit id.
// The same id always returns the same instance (cached). Never returns nil.
func (p *PartitionedRNG) ForUnit(id int) *Xoroshiro128Plus {
	if id < 0 {
		logrus.Panicf("PartitionedRNG: negative unit id %d", id)
	}
	if rng, ok := p.units[id]; ok {
		return rng
	}

	if id < p.frontierID {
		p.frontier = p.base
		p.frontierID = 0
	}
	for p.frontierID < id {
		p.frontier.Jump()
		p.frontierID++
	}

	rng := p.frontier
	p.units[id] = &rng
	return &rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// === FixedStream ===

// FixedStream replays a fixed list of pairs and then reports ErrStreamExhausted.
// Useful for feeding known points into an accumulator.
type FixedStream struct {
	pairs [][2]float64
	next  int
}

// NewFixedStream creates a FixedStream over pairs.
func NewFixedStream(pairs ...[2]float64) *FixedStream {
	return &FixedStream{pairs: pairs}
}

// NextPair implements RandomStream.
func (f *FixedStream) NextPair() (float64, float64, error) {
	if f.next >= len(f.pairs) {
		return 0, 0, ErrStreamExhausted
	}
	p := f.pairs[f.next]
	f.next++
	return p[0], p[1], nil
}
