package strategy

import (
	"github.com/shipq/proptest/rng"
	"github.com/shipq/proptest/runner"
)

// OneOf picks one of the strategies uniformly and generates from it.
// Shrinking moves toward earlier strategies in the list.
func OneOf[T any](strategies ...runner.Strategy[T]) runner.Strategy[T] {
	if len(strategies) == 0 {
		panic("strategy: OneOf called with no strategies")
	}
	indices := make([]int, len(strategies))
	for i := range indices {
		indices[i] = i
	}
	return union(strategies, func(g *rng.Generator) int { return rng.Pick(g, indices) })
}

// Weighted picks strategies[i] with probability proportional to weights[i].
// Panics if the lengths differ or no weight is positive.
func Weighted[T any](weights []uint32, strategies ...runner.Strategy[T]) runner.Strategy[T] {
	if len(weights) != len(strategies) || len(strategies) == 0 {
		panic("strategy: Weighted weights and strategies must have the same non-zero length")
	}
	weights = append([]uint32(nil), weights...)
	return union(strategies, func(g *rng.Generator) int { return g.WeightedIndex(weights) })
}

// SampledFrom generates one of values. Shrinking moves toward earlier values.
func SampledFrom[T any](values ...T) runner.Strategy[T] {
	if len(values) == 0 {
		panic("strategy: SampledFrom called with no values")
	}
	values = append([]T(nil), values...)
	return Map(Int(0, len(values)), func(i int) T { return values[i] })
}

func union[T any](strategies []runner.Strategy[T], choose func(*rng.Generator) int) runner.Strategy[T] {
	strategies = append([]runner.Strategy[T](nil), strategies...)
	return runner.StrategyFunc[T](func(r *runner.TestRunner) (runner.ValueTree[T], error) {
		pick := choose(r.Gen())
		// Trees for every alternative up to the pick, so shrinking can fall
		// back to an earlier one.
		options := make([]runner.ValueTree[T], 0, pick+1)
		for _, s := range strategies[:pick+1] {
			tree, err := s.NewTree(r)
			if err != nil {
				return nil, err
			}
			options = append(options, tree)
		}
		return &unionTree[T]{options: options, pick: pick, prevPick: -1}, nil
	})
}

type unionTree[T any] struct {
	options []runner.ValueTree[T]
	pick    int
	// minPick is the earliest alternative still worth trying. Once an
	// earlier one has passed, shrinking never falls back past it again.
	minPick  int
	prevPick int
}

func (t *unionTree[T]) Current() T {
	return t.options[t.pick].Current()
}

func (t *unionTree[T]) Simplify() bool {
	if t.options[t.pick].Simplify() {
		t.prevPick = -1
		return true
	}
	if t.pick > t.minPick {
		t.prevPick = t.pick
		t.pick--
		return true
	}
	return false
}

func (t *unionTree[T]) Complicate() bool {
	if t.prevPick >= 0 {
		t.pick = t.prevPick
		t.minPick = t.prevPick
		t.prevPick = -1
		return true
	}
	return t.options[t.pick].Complicate()
}
