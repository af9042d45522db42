// Package strategy provides value generators for property tests. Each
// strategy produces value trees that know how to shrink themselves toward
// simpler values.
package strategy

import (
	"fmt"

	"github.com/shipq/proptest/runner"
)

// Int64Range generates integers in [lo, hi). Values shrink toward the value
// in the range closest to zero. Panics if lo >= hi.
func Int64Range(lo, hi int64) runner.Strategy[int64] {
	if lo >= hi {
		panic(fmt.Sprintf("strategy: empty range [%d, %d)", lo, hi))
	}
	return runner.StrategyFunc[int64](func(r *runner.TestRunner) (runner.ValueTree[int64], error) {
		span := uint64(hi) - uint64(lo)
		v := int64(uint64(lo) + r.Gen().Uint64n(span))
		return newIntTree(lo, hi, v), nil
	})
}

// Int generates ints in [lo, hi).
func Int(lo, hi int) runner.Strategy[int] {
	return Map(Int64Range(int64(lo), int64(hi)), func(v int64) int { return int(v) })
}

// intTree binary-searches the distance between the generated value and the
// origin, the in-range value closest to zero. Every distance in [lo, curr)
// that has been tried passed; hi always holds a failing distance.
type intTree struct {
	origin   int64
	negative bool
	lo       uint64
	curr     uint64
	hi       uint64
}

func newIntTree(lo, hi, v int64) *intTree {
	t := &intTree{}
	switch {
	case lo >= 0:
		t.origin = lo
	case hi <= 0:
		t.origin = hi - 1
		t.negative = true
	default:
		t.negative = v < 0
	}
	if t.negative {
		t.curr = uint64(t.origin) - uint64(v)
	} else {
		t.curr = uint64(v) - uint64(t.origin)
	}
	t.hi = t.curr
	return t
}

func (t *intTree) Current() int64 {
	if t.negative {
		return int64(uint64(t.origin) - t.curr)
	}
	return int64(uint64(t.origin) + t.curr)
}

func (t *intTree) reposition() bool {
	mid := t.lo + (t.hi-t.lo)/2
	if mid == t.curr {
		return false
	}
	t.curr = mid
	return true
}

func (t *intTree) Simplify() bool {
	if t.hi <= t.lo {
		return false
	}
	t.hi = t.curr
	return t.reposition()
}

func (t *intTree) Complicate() bool {
	if t.hi <= t.lo {
		return false
	}
	t.lo = t.curr + 1
	return t.reposition()
}
