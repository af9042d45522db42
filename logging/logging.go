// Package logging holds the slog loggers used for proptest diagnostics.
//
// Diagnostics are the warnings the engine prints while it keeps going: an
// unparsable environment override, a malformed persistence line, a
// persistence file that could not be written. They never abort a test.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"
)

// Component is attached to every diagnostics record.
const Component = "proptest"

// PrettyJSONHandler pretty prints JSON records, one indented object per record.
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}

	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// NewPrettyJSON returns a logger writing indented JSON to w.
func NewPrettyJSON(w io.Writer) *slog.Logger {
	return slog.New(&PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, nil),
		writer:      w,
	})
}

// New returns a text diagnostics logger writing to w.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil)).With("component", Component)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(io.Discard)
}

// Diagnostics is the process-wide diagnostics logger. It writes to stderr.
var Diagnostics = New(os.Stderr)

// OrDefault returns l, or Diagnostics when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Diagnostics
	}
	return l
}
