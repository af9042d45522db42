package runner

import (
	"errors"
	"fmt"
)

// Abort reasons for exhausted rejection budgets.
var (
	ErrTooManyLocalRejects  = errors.New("too many local rejects")
	ErrTooManyGlobalRejects = errors.New("too many global rejects")
)

// CaseKind classifies a non-passing test case.
type CaseKind int

const (
	// CaseReject means the input was not valid for the test. It is neither
	// a success nor a failure; a new input is generated instead.
	CaseReject CaseKind = iota
	// CaseFail means the code under test failed.
	CaseFail
)

// TestCaseError is returned by a test function to reject its input or to
// report a failure. Any other error returned by a test function counts as a
// failure carrying the error's text.
type TestCaseError struct {
	Kind CaseKind
	// Message is the rejection site for CaseReject and the failure reason
	// for CaseFail.
	Message string
}

func (e *TestCaseError) Error() string {
	if e.Kind == CaseReject {
		return "Input rejected at " + e.Message
	}
	return "Case failed: " + e.Message
}

// Reject returns an error rejecting the current input. whence should read
// well in "rejected at <whence>".
func Reject(whence string) error {
	return &TestCaseError{Kind: CaseReject, Message: whence}
}

// Fail returns an error failing the current case.
func Fail(why string) error {
	return &TestCaseError{Kind: CaseFail, Message: why}
}

// Failf is Fail with formatting.
func Failf(format string, args ...any) error {
	return Fail(fmt.Sprintf(format, args...))
}

// IsReject reports whether err is, or wraps, a rejection, and returns its
// rejection site.
func IsReject(err error) (string, bool) {
	var ce *TestCaseError
	if errors.As(err, &ce) && ce != nil && ce.Kind == CaseReject {
		return ce.Message, true
	}
	return "", false
}

// nilCaseError is the failure reason for a nil *TestCaseError returned as a
// non-nil error.
const nilCaseError = "test returned a nil *TestCaseError"

// asCaseError classifies a non-nil error returned by a test function.
func asCaseError(err error) *TestCaseError {
	var ce *TestCaseError
	if errors.As(err, &ce) {
		if ce == nil {
			return &TestCaseError{Kind: CaseFail, Message: nilCaseError}
		}
		return ce
	}
	return &TestCaseError{Kind: CaseFail, Message: err.Error()}
}

// ErrorKind classifies how a whole test ended unsuccessfully.
type ErrorKind int

const (
	// Aborted means the test gave up, for example because too many inputs
	// were rejected.
	Aborted ErrorKind = iota
	// Failed means a failing case was found and minimized.
	Failed
)

// TestError is returned by Run when a test does not pass.
type TestError[T any] struct {
	Kind ErrorKind
	// Reason says why the test was aborted or where it failed.
	Reason string
	// Value is the minimal failing input. Only set for Failed.
	Value T
	// Cause is the budget error behind an abort, if any.
	Cause error
}

func (e *TestError[T]) Error() string {
	if e.Kind == Aborted {
		return "Test aborted: " + e.Reason
	}
	return fmt.Sprintf("Test failed: %s; minimal failing input: %s", e.Reason, Render(e.Value))
}

func (e *TestError[T]) Unwrap() error {
	return e.Cause
}

func abortErr[T any](cause error) *TestError[T] {
	return &TestError[T]{Kind: Aborted, Reason: cause.Error(), Cause: cause}
}

// Render is the debug rendering used for failing values in messages and in
// the persistence file.
func Render(v any) string {
	return fmt.Sprintf("%#v", v)
}
