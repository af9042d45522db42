// Package runner executes property tests: it generates cases from a
// strategy, runs the test function on them, shrinks failures to a minimal
// counterexample and persists failing seeds so they are replayed first on
// the next run.
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/rng"
)

// TestRunner holds the state of one property test run. It is not safe for
// concurrent use; strategies that need a runner of their own should take a
// PartialClone.
type TestRunner struct {
	config        Config
	successes     uint32
	localRejects  uint32
	globalRejects uint32
	gen           *rng.Generator
	flatMapRegens *atomic.Uint64

	localRejectDetail  map[string]uint32
	globalRejectDetail map[string]uint32

	sourceFile string
	store      persist.Store
	storeSet   bool
	logger     *slog.Logger
}

// New creates a runner for cfg. Case seeds are drawn from a stream seeded by
// cfg.RNGSeed when set, otherwise from fresh entropy.
func New(cfg Config) *TestRunner {
	seed := rng.EntropySeed()
	if cfg.RNGSeed != "" {
		seed = rng.SeedFromString(cfg.RNGSeed)
	}
	return NewWithSeed(cfg, seed)
}

// NewWithSeed creates a runner whose case seeds are drawn from the stream
// for seed.
func NewWithSeed(cfg Config, seed rng.Seed) *TestRunner {
	return &TestRunner{
		config:             cfg.Clone(),
		gen:                rng.New(seed),
		flatMapRegens:      new(atomic.Uint64),
		localRejectDetail:  make(map[string]uint32),
		globalRejectDetail: make(map[string]uint32),
	}
}

// Default is New(DefaultConfig()).
func Default() *TestRunner {
	return New(DefaultConfig())
}

// PartialClone returns a runner with the same configuration, source file,
// store, logger and regeneration counter as r, but with fresh counters and
// an independent random stream drawn from r's.
func (r *TestRunner) PartialClone() *TestRunner {
	return &TestRunner{
		config:             r.config.Clone(),
		gen:                rng.New(r.gen.NextSeed()),
		flatMapRegens:      r.flatMapRegens,
		localRejectDetail:  make(map[string]uint32),
		globalRejectDetail: make(map[string]uint32),
		sourceFile:         r.sourceFile,
		store:              r.store,
		storeSet:           r.storeSet,
		logger:             r.logger,
	}
}

// Gen returns the random stream strategies draw from.
func (r *TestRunner) Gen() *rng.Generator {
	return r.gen
}

// Config returns a copy of the runner's configuration.
func (r *TestRunner) Config() Config {
	return r.config.Clone()
}

// SetSourceFile records the file the test is defined in. It is used to
// resolve the persistence file location.
func (r *TestRunner) SetSourceFile(path string) {
	r.sourceFile = path
}

// SetStore replaces the store derived from the persistence policy. A nil
// store disables persistence.
func (r *TestRunner) SetStore(s persist.Store) {
	r.store = s
	r.storeSet = true
}

// SetLogger sets the diagnostics logger. Nil restores logging.Diagnostics.
func (r *TestRunner) SetLogger(l *slog.Logger) {
	r.logger = l
}

func (r *TestRunner) log() *slog.Logger {
	return logging.OrDefault(r.logger)
}

// Successes returns the number of passed cases so far.
func (r *TestRunner) Successes() uint32 { return r.successes }

// LocalRejects returns the number of values rejected by strategies.
func (r *TestRunner) LocalRejects() uint32 { return r.localRejects }

// GlobalRejects returns the number of inputs rejected by the test function.
func (r *TestRunner) GlobalRejects() uint32 { return r.globalRejects }

// LocalRejectDetail returns local rejection counts by rejection site.
func (r *TestRunner) LocalRejectDetail() map[string]uint32 {
	return maps.Clone(r.localRejectDetail)
}

// GlobalRejectDetail returns global rejection counts by rejection site.
func (r *TestRunner) GlobalRejectDetail() map[string]uint32 {
	return maps.Clone(r.globalRejectDetail)
}

// resolveStore returns the store for this run, or nil if persistence is off.
func (r *TestRunner) resolveStore() persist.Store {
	if r.storeSet {
		return r.store
	}
	path, ok := r.config.FailurePersistence.Resolve(r.sourceFile, r.log())
	if !ok {
		return nil
	}
	return persist.NewFileStore(path, r.logger)
}

// Run runs test cases against f, choosing inputs via s.
//
// Persisted failing cases are replayed first. Then fresh cases are generated
// until Config.Cases of them pass. The first failure is shrunk to a minimal
// failing input and returned as a *TestError[T] of kind Failed; a fresh
// failure is persisted before returning. Exhausting a rejection budget
// returns a *TestError[T] of kind Aborted.
//
// f rejects an input by returning an error from Reject and fails by
// returning any other error or by panicking.
func Run[T any](r *TestRunner, s Strategy[T], f func(T) error) error {
	store := r.resolveStore()

	if store != nil {
		saved := r.gen
		for _, seed := range store.Load() {
			r.gen = rng.New(seed)
			if err := genAndRunCase(r, s, f, false); err != nil {
				r.gen = saved
				return err
			}
		}
		r.gen = saved
	}

	for r.successes < r.config.Cases {
		// Reseed from a fresh seed so that seed alone reproduces this case.
		seed := r.gen.NextSeed()
		outer := r.gen
		r.gen = rng.New(seed)
		err := genAndRunCase(r, s, f, true)
		r.gen = outer

		if err != nil {
			var te *TestError[T]
			if errors.As(err, &te) && te.Kind == Failed && store != nil {
				store.Save(seed, Render(te.Value))
			}
			return err
		}
	}

	return nil
}

func genAndRunCase[T any](r *TestRunner, s Strategy[T], f func(T) error, count bool) error {
	tree, err := s.NewTree(r)
	if err != nil {
		if whence, ok := IsReject(err); ok {
			if err := r.RejectLocal(whence); err != nil {
				return abortErr[T](err)
			}
			return nil
		}
		return abortErr[T](err)
	}

	passed, err := RunOne(r, tree, f)
	if err != nil {
		return err
	}
	if passed && count {
		r.successes++
	}
	return nil
}

// RunOne runs one case. A failure is shrunk and returned as a
// *TestError[T]; otherwise the result reports whether the case passed
// (true) or was rejected (false). A rejection that exhausts the global
// budget aborts.
func RunOne[T any](r *TestRunner, tree ValueTree[T], f func(T) error) (bool, error) {
	outcome := evaluate(f, tree.Current())
	switch {
	case outcome == nil:
		return true, nil

	case outcome.Kind == CaseReject:
		if err := r.rejectGlobal(outcome.Message); err != nil {
			return false, abortErr[T](err)
		}
		return false, nil

	default:
		why, value := shrink(tree, f, outcome.Message)
		return false, &TestError[T]{Kind: Failed, Reason: why, Value: value}
	}
}

// evaluate calls f on v. A panic inside f becomes a failure carrying the
// panic message.
func evaluate[T any](f func(T) error, v T) (outcome *TestCaseError) {
	defer func() {
		if p := recover(); p != nil {
			outcome = &TestCaseError{Kind: CaseFail, Message: panicMessage(p)}
		}
	}()

	if err := f(v); err != nil {
		return asCaseError(err)
	}
	return nil
}

const unknownPanic = "<unknown panic value>"

func panicMessage(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return unknownPanic
	}
}
