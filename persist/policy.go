// Package persist stores the seeds of previously failing cases so they can be
// replayed before any novel case is generated.
package persist

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/project"
)

// DefaultFile is the file name used by the default policy.
const DefaultFile = "proptest-failures.txt"

// Mode selects how the persistence file location is derived.
type Mode int

const (
	// Off disables persistence. No I/O is ever performed.
	Off Mode = iota
	// WithMain resolves Path against the nearest ancestor of the source file's
	// directory holding one of the project root markers.
	WithMain
	// WithSource resolves Path against the source file's directory.
	WithSource
	// Direct uses Path as given.
	Direct
)

var modeNames = map[Mode]string{
	Off:        "off",
	WithMain:   "with-main",
	WithSource: "with-source",
	Direct:     "direct",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Policy describes where failing cases are persisted.
type Policy struct {
	Mode Mode
	Path string
	// Markers name the files that identify a project root for WithMain.
	// Empty means project.DefaultMarkers.
	Markers []string
}

// DefaultPolicy persists to proptest-failures.txt at the module root.
func DefaultPolicy() Policy {
	return Policy{Mode: WithMain, Path: DefaultFile}
}

// ParsePolicy parses "off", "direct:<path>", "with-source:<path>" or
// "with-main:<path>". A mode without a path uses DefaultFile.
func ParsePolicy(text string) (Policy, error) {
	name, path, _ := strings.Cut(strings.TrimSpace(text), ":")
	name = strings.ToLower(strings.TrimSpace(name))
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFile
	}

	for m, n := range modeNames {
		if n != name {
			continue
		}
		if m == Off {
			return Policy{Mode: Off}, nil
		}
		return Policy{Mode: m, Path: path}, nil
	}
	return Policy{}, fmt.Errorf("unknown failure persistence mode %q", name)
}

// String renders the policy in the form accepted by ParsePolicy.
func (p Policy) String() string {
	if p.Mode == Off {
		return Off.String()
	}
	return p.Mode.String() + ":" + p.Path
}

// Clone returns a copy that shares no slices with p.
func (p Policy) Clone() Policy {
	p.Markers = append([]string(nil), p.Markers...)
	return p
}

// Resolve determines the persistence file for a test whose source file is
// source (empty if unknown). The second result is false when persistence is
// disabled. Fallbacks are reported on logger.
func (p Policy) Resolve(source string, logger *slog.Logger) (string, bool) {
	logger = logging.OrDefault(logger)

	switch p.Mode {
	case Off:
		return "", false

	case Direct:
		return p.Path, true

	case WithSource:
		if source == "" {
			logger.Warn("failure persistence is with-source, but no source file is known", "path", p.Path)
			return p.Path, true
		}
		return join(filepath.Dir(source), p.Path), true

	case WithMain:
		if source == "" {
			logger.Warn("failure persistence is with-main, but no source file is known", "path", p.Path)
			return p.Path, true
		}
		root, err := project.FindRootFrom(filepath.Dir(source), p.Markers...)
		if err != nil {
			logger.Warn("failure persistence is with-main, but no project root was found",
				"source", source, "markers", p.markers())
			return join(filepath.Dir(source), p.Path), true
		}
		return join(root, p.Path), true

	default:
		panic(fmt.Sprintf("persist: invalid failure persistence mode %v", p.Mode))
	}
}

func (p Policy) markers() []string {
	if len(p.Markers) == 0 {
		return project.DefaultMarkers
	}
	return p.Markers
}

// join resolves path against base; an absolute path replaces base entirely.
func join(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
