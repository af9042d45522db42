package strategy

import (
	"fmt"

	"github.com/shipq/proptest/runner"
)

// Slice generates slices with a length in [minLen, maxLen] and elements from
// elem. Shrinking first tries removing each element, then shrinks the
// remaining elements one at a time.
func Slice[T any](elem runner.Strategy[T], minLen, maxLen int) runner.Strategy[[]T] {
	if minLen < 0 || minLen > maxLen {
		panic(fmt.Sprintf("strategy: invalid slice length range [%d, %d]", minLen, maxLen))
	}
	return runner.StrategyFunc[[]T](func(r *runner.TestRunner) (runner.ValueTree[[]T], error) {
		n := minLen + r.Gen().Intn(maxLen-minLen+1)
		t := &sliceTree[T]{
			elems:    make([]runner.ValueTree[T], 0, n),
			included: make([]bool, 0, n),
			minLen:   minLen,
			last:     lastNone,
		}
		for i := 0; i < n; i++ {
			e, err := elem.NewTree(r)
			if err != nil {
				return nil, err
			}
			t.elems = append(t.elems, e)
			t.included = append(t.included, true)
		}
		t.count = n
		return t, nil
	})
}

type sliceStep int

const (
	lastNone sliceStep = iota
	lastDelete
	lastShrink
)

type sliceTree[T any] struct {
	elems    []runner.ValueTree[T]
	included []bool
	count    int
	minLen   int

	deleteIdx int
	shrinkIdx int
	last      sliceStep
	lastIdx   int
}

func (t *sliceTree[T]) Current() []T {
	out := make([]T, 0, t.count)
	for i, e := range t.elems {
		if t.included[i] {
			out = append(out, e.Current())
		}
	}
	return out
}

func (t *sliceTree[T]) Simplify() bool {
	for t.deleteIdx < len(t.elems) && t.count > t.minLen {
		i := t.deleteIdx
		t.deleteIdx++
		if t.included[i] {
			t.included[i] = false
			t.count--
			t.last, t.lastIdx = lastDelete, i
			return true
		}
	}

	for t.shrinkIdx < len(t.elems) {
		i := t.shrinkIdx
		if t.included[i] && t.elems[i].Simplify() {
			t.last, t.lastIdx = lastShrink, i
			return true
		}
		t.shrinkIdx++
	}

	t.last = lastNone
	return false
}

func (t *sliceTree[T]) Complicate() bool {
	switch t.last {
	case lastDelete:
		t.included[t.lastIdx] = true
		t.count++
		t.last = lastNone
		return true
	case lastShrink:
		if t.elems[t.lastIdx].Complicate() {
			return true
		}
		t.last = lastNone
		return false
	default:
		return false
	}
}
