// Package cli holds the terminal output helpers shared by the commands.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Output writes command results to Out and warnings to Err.
type Output struct {
	Out io.Writer
	Err io.Writer
}

// Std writes to stdout and stderr.
func Std() *Output {
	return &Output{Out: os.Stdout, Err: os.Stderr}
}

// Infof prints a formatted informational line.
func (o *Output) Infof(format string, args ...any) {
	fmt.Fprintf(o.Out, format+"\n", args...)
}

// Successf prints a formatted success line.
func (o *Output) Successf(format string, args ...any) {
	fmt.Fprintf(o.Out, "✓ "+format+"\n", args...)
}

// Warnf prints a formatted warning line.
func (o *Output) Warnf(format string, args ...any) {
	fmt.Fprintf(o.Err, "warning: "+format+"\n", args...)
}

// Fatal prints a message to stderr and exits with code 1.
func Fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}

// FatalErr prints an error message with details to stderr and exits with code 1.
func FatalErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
