package workload

import (
	mrand "math/rand"
)

// Generator produces deterministic benchmark input data from a seed.
// A Generator is not safe for concurrent use.
type Generator struct {
	seed int64
	rng  *mrand.Rand
}

// NewGenerator creates a Generator for the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Matrix returns an n×n matrix of values uniformly drawn from [0, 1).
// Non-positive n yields an empty matrix.
func (g *Generator) Matrix(n int) [][]float64 {
	if n <= 0 {
		return [][]float64{}
	}

	// Single backing array keeps rows contiguous.
	backing := g.Numbers(n * n)
	m := make([][]float64, n)

	for i := range m {
		m[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}

	return m
}

// Numbers returns count values uniformly drawn from [0, 1).
func (g *Generator) Numbers(count int) []float64 {
	if count <= 0 {
		return []float64{}
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = g.rng.Float64()
	}

	return out
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}
