// Package proptest runs property tests from go test.
//
// A property is a function that returns nil for inputs it accepts. Inputs
// come from a strategy; when the property fails, the input is shrunk to a
// minimal counterexample and its seed is persisted so the next run tries it
// first.
//
// Basic usage:
//
//	func TestAbs(t *testing.T) {
//	    proptest.Check(t, strategy.Int(-1000, 1000), func(n int) error {
//	        return proptest.Ensure(abs(n) >= 0, "abs(%d) is negative", n)
//	    })
//	}
package proptest

import (
	"runtime"
	"testing"

	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/rng"
	"github.com/shipq/proptest/runner"
)

type options struct {
	config   runner.Config
	store    persist.Store
	storeSet bool
	seed     rng.Seed
	seedSet  bool
	verbose  bool
}

// Option customizes a Check.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg runner.Config) Option {
	return func(o *options) { o.config = cfg.Clone() }
}

// WithCases sets the number of passing cases required.
func WithCases(n uint32) Option {
	return func(o *options) { o.config.Cases = n }
}

// WithStore persists failures to s instead of the configured file. A nil
// store disables persistence.
func WithStore(s persist.Store) Option {
	return func(o *options) {
		o.store = s
		o.storeSet = true
	}
}

// WithSeed fixes the stream case seeds are drawn from.
func WithSeed(seed rng.Seed) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// Verbose logs run statistics when the property passes.
func Verbose() Option {
	return func(o *options) { o.verbose = true }
}

// Check runs f against values from s and fails t with the minimal failing
// input if the property does not hold.
func Check[T any](t testing.TB, s runner.Strategy[T], f func(T) error, opts ...Option) {
	t.Helper()

	o := options{config: runner.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	var r *runner.TestRunner
	if o.seedSet {
		r = runner.NewWithSeed(o.config, o.seed)
	} else {
		r = runner.New(o.config)
	}
	if _, file, _, ok := runtime.Caller(1); ok {
		r.SetSourceFile(file)
	}
	if o.storeSet {
		r.SetStore(o.store)
	}

	if o.verbose {
		t.Logf("proptest %q: running %d cases", t.Name(), o.config.Cases)
	}

	if err := runner.Run(r, s, f); err != nil {
		t.Fatalf("proptest %q: %v\n%s", t.Name(), err, r)
		return
	}

	if o.verbose {
		t.Logf("proptest %q: passed\n%s", t.Name(), r)
	}
}

// Ensure returns a failure with the formatted message unless cond holds.
func Ensure(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return runner.Failf(format, args...)
}

// Assume rejects the current input unless cond holds. Rejected inputs count
// against the global rejection budget and are replaced by a new one.
func Assume(cond bool, whence string) error {
	if cond {
		return nil
	}
	return runner.Reject(whence)
}
