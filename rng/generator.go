package rng

import (
	"math/rand"
)

// Generator wraps a seeded xorshift stream for reproducible random value
// generation. The seed is kept so it can be persisted when a case fails.
type Generator struct {
	src  *XorShift
	rng  *rand.Rand
	seed Seed
}

// New creates a Generator at the start of the stream for seed.
func New(seed Seed) *Generator {
	return fromSource(NewXorShift(seed), seed)
}

func fromSource(src *XorShift, seed Seed) *Generator {
	return &Generator{
		src:  src,
		rng:  rand.New(src),
		seed: seed,
	}
}

// Seed returns the seed this generator was created from.
func (g *Generator) Seed() Seed {
	return g.seed
}

// Clone returns an independent generator positioned at the same point of the
// same stream.
func (g *Generator) Clone() *Generator {
	return fromSource(g.src.Clone(), g.seed)
}

// NextSeed draws a fresh seed from the stream.
func (g *Generator) NextSeed() Seed {
	return g.src.NextSeed()
}

// Uint32 returns the next raw word of the stream.
func (g *Generator) Uint32() uint32 {
	return g.src.Uint32()
}

// Uint64 returns a random uint64.
func (g *Generator) Uint64() uint64 {
	return g.src.Uint64()
}

// Uint64n returns a random uint64 in [0, n).
// Panics if n == 0.
func (g *Generator) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("rng: Uint64n called with n == 0")
	}
	if n&(n-1) == 0 {
		return g.Uint64() & (n - 1)
	}
	// Values below 2^64 mod n are rejected so every residue is equally likely.
	threshold := -n % n
	for {
		v := g.Uint64()
		if v >= threshold {
			return v % n
		}
	}
}

// Intn returns a random int in [0, n).
// Panics if n <= 0.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// Int63n returns a random int64 in [0, n).
// Panics if n <= 0.
func (g *Generator) Int63n(n int64) int64 {
	return g.rng.Int63n(n)
}

// Float64 returns a random float64 in [0.0, 1.0).
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Bool returns a random boolean with 50% probability for each value.
func (g *Generator) Bool() bool {
	return g.rng.Intn(2) == 1
}

// BoolWithProb returns true with the given probability (0.0 to 1.0).
func (g *Generator) BoolWithProb(prob float64) bool {
	return g.rng.Float64() < prob
}
