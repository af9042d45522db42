package strategy

import (
	"fmt"

	"github.com/shipq/proptest/runner"
)

// Just always generates v. It does not shrink.
func Just[T any](v T) runner.Strategy[T] {
	return runner.StrategyFunc[T](func(*runner.TestRunner) (runner.ValueTree[T], error) {
		return justTree[T]{v}, nil
	})
}

type justTree[T any] struct{ v T }

func (t justTree[T]) Current() T       { return t.v }
func (t justTree[T]) Simplify() bool   { return false }
func (t justTree[T]) Complicate() bool { return false }

// Map transforms the values of s with f. Shrinking happens on the source
// values; f must be deterministic.
func Map[T, U any](s runner.Strategy[T], f func(T) U) runner.Strategy[U] {
	return runner.StrategyFunc[U](func(r *runner.TestRunner) (runner.ValueTree[U], error) {
		src, err := s.NewTree(r)
		if err != nil {
			return nil, err
		}
		return &mapTree[T, U]{src: src, f: f}, nil
	})
}

type mapTree[T, U any] struct {
	src runner.ValueTree[T]
	f   func(T) U
}

func (t *mapTree[T, U]) Current() U       { return t.f(t.src.Current()) }
func (t *mapTree[T, U]) Simplify() bool   { return t.src.Simplify() }
func (t *mapTree[T, U]) Complicate() bool { return t.src.Complicate() }

// Filter keeps only values of s accepted by pred. Rejected values are
// counted as local rejections at whence, and generation is retried until a
// value passes or the local rejection budget runs out.
func Filter[T any](s runner.Strategy[T], whence string, pred func(T) bool) runner.Strategy[T] {
	return runner.StrategyFunc[T](func(r *runner.TestRunner) (runner.ValueTree[T], error) {
		for {
			src, err := s.NewTree(r)
			if err != nil {
				return nil, err
			}
			if pred(src.Current()) {
				return &filterTree[T]{src: src, whence: whence, pred: pred}, nil
			}
			if err := r.RejectLocal(whence); err != nil {
				return nil, err
			}
		}
	})
}

type filterTree[T any] struct {
	src    runner.ValueTree[T]
	whence string
	pred   func(T) bool
}

func (t *filterTree[T]) Current() T { return t.src.Current() }

// ensureAcceptable complicates the source until its value passes the
// filter again. The value the tree was generated with passed, so this
// terminates for any source that can complicate back to it.
func (t *filterTree[T]) ensureAcceptable() {
	for !t.pred(t.src.Current()) {
		if !t.src.Complicate() {
			panic(fmt.Sprintf("strategy: unable to complicate filtered value back into one accepted at %s", t.whence))
		}
	}
}

func (t *filterTree[T]) Simplify() bool {
	if !t.src.Simplify() {
		return false
	}
	t.ensureAcceptable()
	return true
}

func (t *filterTree[T]) Complicate() bool {
	if !t.src.Complicate() {
		return false
	}
	t.ensureAcceptable()
	return true
}

// Rejecting wraps s so that values not accepted by pred make NewTree return
// a rejection at whence instead of retrying. The runner counts it against
// the local rejection budget and moves on to the next case.
func Rejecting[T any](s runner.Strategy[T], whence string, pred func(T) bool) runner.Strategy[T] {
	return runner.StrategyFunc[T](func(r *runner.TestRunner) (runner.ValueTree[T], error) {
		src, err := s.NewTree(r)
		if err != nil {
			return nil, err
		}
		if !pred(src.Current()) {
			return nil, runner.Reject(whence)
		}
		return &filterTree[T]{src: src, whence: whence, pred: pred}, nil
	})
}
