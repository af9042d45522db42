package proptest

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/rng"
	"github.com/shipq/proptest/runner"
	"github.com/shipq/proptest/strategy"
)

// recorder captures Fatalf and Logf instead of stopping the test.
type recorder struct {
	testing.TB
	fatals []string
	logs   []string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func (r *recorder) Logf(format string, args ...any) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func newRecorder(t *testing.T) *recorder {
	return &recorder{TB: t}
}

// =============================================================================
// Check Tests
// =============================================================================

func TestCheck_Passes(t *testing.T) {
	rec := newRecorder(t)
	var calls int
	Check(rec, strategy.Int(1, 100), func(n int) error {
		calls++
		return Ensure(n >= 1 && n < 100, "%d out of range", n)
	}, WithCases(50), WithStore(nil), WithSeed(rng.Seed{1, 2, 3, 4}))

	if len(rec.fatals) != 0 {
		t.Fatalf("unexpected failure: %v", rec.fatals)
	}
	if calls != 50 {
		t.Errorf("calls = %d, want 50", calls)
	}
}

func TestCheck_ReportsMinimalInput(t *testing.T) {
	rec := newRecorder(t)
	Check(rec, strategy.Int(0, 1000), func(n int) error {
		return Ensure(n < 42, "%d is too big", n)
	}, WithStore(nil), WithSeed(rng.Seed{1, 2, 3, 4}))

	if len(rec.fatals) != 1 {
		t.Fatalf("fatals = %v, want exactly one", rec.fatals)
	}
	msg := rec.fatals[0]
	for _, want := range []string{"42 is too big", "minimal failing input: 42", t.Name()} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestCheck_Assume(t *testing.T) {
	rec := newRecorder(t)
	Check(rec, strategy.Int(0, 100), func(n int) error {
		if err := Assume(n%2 == 0, "odd"); err != nil {
			return err
		}
		return Ensure(n%2 == 0, "%d is odd", n)
	}, WithCases(30), WithStore(nil), WithSeed(rng.Seed{5, 6, 7, 8}), Verbose())

	if len(rec.fatals) != 0 {
		t.Fatalf("unexpected failure: %v", rec.fatals)
	}
	if len(rec.logs) != 2 {
		t.Fatalf("logs = %v, want start and summary", rec.logs)
	}
	if !strings.Contains(rec.logs[1], "successes: 30") || !strings.Contains(rec.logs[1], "times at odd") {
		t.Errorf("summary %q missing stats", rec.logs[1])
	}
}

func TestCheck_WithConfig(t *testing.T) {
	cfg := runner.Defaults()
	cfg.MaxGlobalRejects = 2

	rec := newRecorder(t)
	Check(rec, strategy.Int(0, 10), func(int) error {
		return Assume(false, "never")
	}, WithConfig(cfg), WithStore(nil))

	if len(rec.fatals) != 1 || !strings.Contains(rec.fatals[0], "Test aborted: too many global rejects") {
		t.Errorf("fatals = %v, want an abort", rec.fatals)
	}
}

func TestCheck_PersistsFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "failures.txt")
	cfg := runner.Defaults()
	cfg.FailurePersistence = persist.Policy{Mode: persist.Direct, Path: path}

	rec := newRecorder(t)
	Check(rec, strategy.Just("x"), func(string) error {
		return runner.Fail("always")
	}, WithConfig(cfg))

	if len(rec.fatals) != 1 {
		t.Fatalf("fatals = %v, want exactly one", rec.fatals)
	}
	if seeds := persist.NewFileStore(path, nil).Load(); len(seeds) != 1 {
		t.Errorf("persisted seeds = %v, want one", seeds)
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestEnsure(t *testing.T) {
	if err := Ensure(true, "unused"); err != nil {
		t.Errorf("Ensure(true) = %v, want nil", err)
	}
	err := Ensure(false, "got %d", 3)
	if err == nil || err.Error() != "Case failed: got 3" {
		t.Errorf("Ensure(false) = %v", err)
	}
}

func TestAssume(t *testing.T) {
	if err := Assume(true, "unused"); err != nil {
		t.Errorf("Assume(true) = %v, want nil", err)
	}
	whence, ok := runner.IsReject(Assume(false, "here"))
	if !ok || whence != "here" {
		t.Errorf("IsReject(Assume(false)) = (%q, %v), want (%q, true)", whence, ok, "here")
	}
}
