package strategy

import (
	"github.com/shipq/proptest/runner"
)

// FlatMap generates a value from s and then a value from the strategy f
// builds for it. Shrinking the outer value regenerates the inner one, which
// is bounded by the runner's flat-map regeneration budget.
func FlatMap[T, U any](s runner.Strategy[T], f func(T) runner.Strategy[U]) runner.Strategy[U] {
	return runner.StrategyFunc[U](func(r *runner.TestRunner) (runner.ValueTree[U], error) {
		outer, err := s.NewTree(r)
		if err != nil {
			return nil, err
		}
		sub := r.PartialClone()
		inner, err := f(outer.Current()).NewTree(sub)
		if err != nil {
			return nil, err
		}
		return &flatMapTree[T, U]{outer: outer, inner: inner, f: f, runner: sub}, nil
	})
}

type flatStep int

const (
	flatNone flatStep = iota
	flatInner
	flatOuter
)

type flatMapTree[T, U any] struct {
	outer  runner.ValueTree[T]
	inner  runner.ValueTree[U]
	f      func(T) runner.Strategy[U]
	runner *runner.TestRunner
	last   flatStep
	// prevInner is the inner tree replaced by the last outer step.
	prevInner runner.ValueTree[U]
}

func (t *flatMapTree[T, U]) Current() U {
	return t.inner.Current()
}

func (t *flatMapTree[T, U]) Simplify() bool {
	if t.inner.Simplify() {
		t.last = flatInner
		return true
	}
	if !t.runner.FlatMapRegen() || !t.outer.Simplify() {
		t.last = flatNone
		return false
	}
	return t.regenerate()
}

func (t *flatMapTree[T, U]) Complicate() bool {
	switch t.last {
	case flatInner:
		if t.inner.Complicate() {
			return true
		}
		t.last = flatNone
		return false
	case flatOuter:
		// Put back the inner value that was known to fail, then let the
		// outer search continue upward.
		t.inner = t.prevInner
		if !t.runner.FlatMapRegen() || !t.outer.Complicate() {
			t.last = flatNone
			return true
		}
		return t.regenerate()
	default:
		return false
	}
}

// regenerate rebuilds the inner tree for the outer tree's current value.
func (t *flatMapTree[T, U]) regenerate() bool {
	inner, err := t.f(t.outer.Current()).NewTree(t.runner)
	if err != nil {
		t.last = flatNone
		return false
	}
	t.prevInner = t.inner
	t.inner = inner
	t.last = flatOuter
	return true
}
