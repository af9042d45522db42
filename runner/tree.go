package runner

// ValueTree is a generated value that can be shrunk. Simplify moves toward a
// simpler value; Complicate backs off the last simplification when it went
// too far. Both report whether they changed the current value.
type ValueTree[T any] interface {
	Current() T
	Simplify() bool
	Complicate() bool
}

// Strategy generates value trees from a runner's random stream.
//
// NewTree returns an error satisfying IsReject when it declines to produce a
// value for this attempt; the runner counts it against the local rejection
// budget and moves on. Any other error aborts the test.
type Strategy[T any] interface {
	NewTree(r *TestRunner) (ValueTree[T], error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc[T any] func(r *TestRunner) (ValueTree[T], error)

func (f StrategyFunc[T]) NewTree(r *TestRunner) (ValueTree[T], error) {
	return f(r)
}
