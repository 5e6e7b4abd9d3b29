package matching

import "math/rand/v2"

// splitMix64 is the canonical SplitMix64 mixer (same constants used to
// derive independent PRNG streams in katalvlaran/lvlath's tsp/rng.go),
// used here both to seed the per-run PCG source and, directly, as a
// counter-based hash for per-node coloring -- kernel invocations run
// concurrently, so a node's color bit must be a pure function of
// (round seed, node index) rather than drawn from a sequential stream.
func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// deriveRoundSeeds produces cfg.Rounds independent 64-bit seeds from a
// single u32 config seed: splitMix64 turns the seed into the two words a
// math/rand/v2 PCG source needs, and the PCG-32-family stream supplies
// one seed per round, filling a per-round seed table up front.
func deriveRoundSeeds(seed uint32, rounds uint32) []uint64 {
	s0 := splitMix64(uint64(seed))
	s1 := splitMix64(s0)
	src := rand.NewPCG(s0, s1)
	r := rand.New(src)
	seeds := make([]uint64, rounds)
	for i := range seeds {
		seeds[i] = r.Uint64()
	}
	return seeds
}

// colorBit draws a node's per-round color: true selects RED, false BLUE.
func colorBit(roundSeed uint64, index uint32) bool {
	mixed := splitMix64(roundSeed ^ uint64(index)*0x9e3779b97f4a7c15)
	return mixed&1 == 1
}
