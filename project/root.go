// Package project locates the root of the project a test belongs to.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	GoModFile  = "go.mod"
	ConfigFile = "proptest.ini"
)

// DefaultMarkers are the marker files that identify a project root when the
// caller does not name any.
var DefaultMarkers = []string{GoModFile}

var ErrNotInProject = errors.New("no project root marker found")

// FindProjectRoot walks up from the current working directory looking for go.mod.
// Returns the directory containing go.mod, or an error if not found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from startDir, which is checked first, until a
// directory containing one of markers is found. With no markers,
// DefaultMarkers is used. Relative start directories stay relative so the
// result can be joined with other relative paths.
func FindRootFrom(startDir string, markers ...string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	dir := filepath.Clean(startDir)
	for {
		if HasMarker(dir, markers...) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root, or the top of a relative path
			return "", ErrNotInProject
		}
		dir = parent
	}
}

// HasMarker returns true if dir contains a regular file named by any of markers.
func HasMarker(dir string, markers ...string) bool {
	for _, m := range markers {
		info, err := os.Stat(filepath.Join(dir, m))
		if err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// HasConfig returns true if the given directory contains a proptest.ini file.
func HasConfig(dir string) bool {
	return HasMarker(dir, ConfigFile)
}
