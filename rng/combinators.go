package rng

// =============================================================================
// Selection Combinators
// =============================================================================

// Pick returns a random element from a non-empty slice.
// Panics if slice is empty.
func Pick[T any](g *Generator, slice []T) T {
	if len(slice) == 0 {
		panic("rng: Pick called with empty slice")
	}
	return slice[g.Intn(len(slice))]
}

// WeightedIndex returns an index into weights, chosen with probability
// proportional to its weight. Weights don't need to sum to 1.
// Panics if weights is empty or all weights are zero.
func (g *Generator) WeightedIndex(weights []uint32) int {
	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	if total == 0 {
		panic("rng: WeightedIndex called with no positive weights")
	}

	point := g.Uint64n(total)

	var cumulative uint64
	for i, w := range weights {
		cumulative += uint64(w)
		if point < cumulative {
			return i
		}
	}

	// Unreachable while point < total, kept for the compiler.
	return len(weights) - 1
}
