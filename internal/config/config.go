// Package config loads project-level proptest settings from proptest.ini.
//
// The file is optional. Every key is optional too; a key that is absent
// leaves the built-in default (or an environment override) in charge.
//
//	[proptest]
//	cases = 512
//	max_local_rejects = 65536
//	max_global_rejects = 1024
//	max_flat_map_regens = 1000000
//	failure_persistence = with-main:proptest-failures.txt
//	project_markers = go.mod
//	rng_seed = nightly
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shipq/proptest/inifile"
	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/project"
)

// Section is the INI section holding proptest settings.
const Section = "proptest"

// Keys recognised in the [proptest] section.
const (
	KeyCases              = "cases"
	KeyMaxLocalRejects    = "max_local_rejects"
	KeyMaxGlobalRejects   = "max_global_rejects"
	KeyMaxFlatMapRegens   = "max_flat_map_regens"
	KeyFailurePersistence = "failure_persistence"
	KeyProjectMarkers     = "project_markers"
	KeyRNGSeed            = "rng_seed"
)

var knownKeys = []string{
	KeyCases, KeyMaxLocalRejects, KeyMaxGlobalRejects, KeyMaxFlatMapRegens,
	KeyFailurePersistence, KeyProjectMarkers, KeyRNGSeed,
}

// ErrNoConfig is returned by Load when the directory has no proptest.ini.
var ErrNoConfig = errors.New(project.ConfigFile + " not found")

// FileConfig holds the settings present in proptest.ini. Nil pointers and
// empty values mean the key was absent.
type FileConfig struct {
	// Path is the file the settings were read from.
	Path string

	Cases              *uint32
	MaxLocalRejects    *uint32
	MaxGlobalRejects   *uint32
	MaxFlatMapRegens   *uint32
	FailurePersistence *persist.Policy
	ProjectMarkers     []string
	RNGSeed            string
}

// Load reads proptest.ini from the given directory (or CWD if empty).
func Load(dir string) (*FileConfig, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	iniPath := filepath.Join(dir, project.ConfigFile)
	if _, err := os.Stat(iniPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w in %s", ErrNoConfig, dir)
	}

	f, err := inifile.ParseFile(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", iniPath, err)
	}

	cfg, err := FromFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", iniPath, err)
	}
	cfg.Path = iniPath
	return cfg, nil
}

// LoadFromProjectRoot finds the project root above the working directory and
// loads proptest.ini from it.
func LoadFromProjectRoot() (*FileConfig, error) {
	root, err := project.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConfig, err)
	}
	return Load(root)
}

// FromFile extracts the [proptest] section of a parsed INI file. Unknown
// keys and unparsable values are errors.
func FromFile(f *inifile.File) (*FileConfig, error) {
	cfg := &FileConfig{}

	s := f.Section(Section)
	if s == nil {
		return cfg, nil
	}

	for _, kv := range s.Values {
		if !isKnownKey(kv.Key) {
			return nil, fmt.Errorf("line %d: unknown key %s.%s", kv.Line, Section, kv.Key)
		}
	}

	counters := []struct {
		key string
		dst **uint32
	}{
		{KeyCases, &cfg.Cases},
		{KeyMaxLocalRejects, &cfg.MaxLocalRejects},
		{KeyMaxGlobalRejects, &cfg.MaxGlobalRejects},
		{KeyMaxFlatMapRegens, &cfg.MaxFlatMapRegens},
	}
	for _, c := range counters {
		kv := s.Lookup(c.key)
		if kv == nil {
			continue
		}
		v, err := parseUint32(kv.Value, Section+"."+c.key)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", kv.Line, err)
		}
		*c.dst = &v
	}

	if kv := s.Lookup(KeyFailurePersistence); kv != nil {
		p, err := persist.ParsePolicy(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", kv.Line, err)
		}
		cfg.FailurePersistence = &p
	}

	if v := s.Get(KeyProjectMarkers); v != "" {
		cfg.ProjectMarkers = parseList(v)
	}

	cfg.RNGSeed = s.Get(KeyRNGSeed)

	return cfg, nil
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// parseUint32 parses a non-negative 32-bit integer.
func parseUint32(v, key string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q (want an unsigned 32-bit integer)", key, v)
	}
	return uint32(n), nil
}

// parseList splits a comma-separated list, dropping empty items.
func parseList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
