package runner

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shipq/proptest/internal/config"
	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/persist"
)

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "PROPTEST_"

// Environment variables read by ResolveConfig.
const (
	EnvCases            = EnvPrefix + "CASES"
	EnvMaxLocalRejects  = EnvPrefix + "MAX_LOCAL_REJECTS"
	EnvMaxGlobalRejects = EnvPrefix + "MAX_GLOBAL_REJECTS"
	EnvMaxFlatMapRegens = EnvPrefix + "MAX_FLAT_MAP_REGENS"
	EnvRNGSeed          = EnvPrefix + "RNG_SEED"
)

// Config controls how a property test is run. It is a plain value; copying
// it yields an independent configuration.
type Config struct {
	// Cases is the number of successful cases required for the test to
	// pass. Replayed persisted cases do not count.
	Cases uint32
	// MaxLocalRejects bounds the values strategies may reject while
	// generating, across the whole test.
	MaxLocalRejects uint32
	// MaxGlobalRejects bounds the inputs the test function may reject.
	MaxGlobalRejects uint32
	// MaxFlatMapRegens bounds how often flat-mapping strategies may
	// regenerate their inner value while shrinking, across every runner
	// cloned from the same root.
	MaxFlatMapRegens uint32
	// FailurePersistence decides where failing seeds are stored.
	FailurePersistence persist.Policy
	// RNGSeed, when set, fixes the stream that fresh case seeds are drawn
	// from, making a whole run reproducible.
	RNGSeed string
}

// Defaults returns the built-in configuration, ignoring the environment.
func Defaults() Config {
	return Config{
		Cases:              256,
		MaxLocalRejects:    65536,
		MaxGlobalRejects:   1024,
		MaxFlatMapRegens:   1_000_000,
		FailurePersistence: persist.DefaultPolicy(),
	}
}

// WithCases returns a copy of c that differs only in the case count.
func (c Config) WithCases(n uint32) Config {
	c = c.Clone()
	c.Cases = n
	return c
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.FailurePersistence = c.FailurePersistence.Clone()
	return c
}

var (
	defaultOnce   sync.Once
	defaultConfig Config
)

// DefaultConfig returns the process-wide default configuration: the
// built-in defaults, overridden by proptest.ini at the project root, then
// by PROPTEST_* environment variables. It is resolved on first use and the
// same value is returned for the rest of the process.
func DefaultConfig() Config {
	defaultOnce.Do(func() {
		logger := logging.Diagnostics
		file, err := config.LoadFromProjectRoot()
		if err != nil {
			if !errors.Is(err, config.ErrNoConfig) {
				logger.Warn("ignoring project configuration", "error", err)
			}
			file = nil
		}
		defaultConfig = ResolveConfig(os.Environ(), file, logger)
	})
	return defaultConfig.Clone()
}

// ResolveConfig layers file settings (may be nil) and then environment
// entries of the form KEY=VALUE over Defaults. Unparsable and unknown
// PROPTEST_* variables are reported on logger and otherwise ignored.
func ResolveConfig(environ []string, file *config.FileConfig, logger *slog.Logger) Config {
	logger = logging.OrDefault(logger)
	result := Defaults()

	if file != nil {
		applyFile(&result, file)
	}

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		switch name {
		case EnvCases:
			parseOrWarn(&result.Cases, value, name, logger)
		case EnvMaxLocalRejects:
			parseOrWarn(&result.MaxLocalRejects, value, name, logger)
		case EnvMaxGlobalRejects:
			parseOrWarn(&result.MaxGlobalRejects, value, name, logger)
		case EnvMaxFlatMapRegens:
			parseOrWarn(&result.MaxFlatMapRegens, value, name, logger)
		case EnvRNGSeed:
			result.RNGSeed = value
		default:
			if strings.HasPrefix(name, EnvPrefix) {
				logger.Warn("ignoring unknown environment variable", "var", name)
			}
		}
	}

	return result
}

func applyFile(dst *Config, file *config.FileConfig) {
	for _, c := range []struct {
		src *uint32
		dst *uint32
	}{
		{file.Cases, &dst.Cases},
		{file.MaxLocalRejects, &dst.MaxLocalRejects},
		{file.MaxGlobalRejects, &dst.MaxGlobalRejects},
		{file.MaxFlatMapRegens, &dst.MaxFlatMapRegens},
	} {
		if c.src != nil {
			*c.dst = *c.src
		}
	}
	if file.FailurePersistence != nil {
		dst.FailurePersistence = file.FailurePersistence.Clone()
	}
	if len(file.ProjectMarkers) > 0 {
		dst.FailurePersistence.Markers = append([]string(nil), file.ProjectMarkers...)
	}
	if file.RNGSeed != "" {
		dst.RNGSeed = file.RNGSeed
	}
}

func parseOrWarn(dst *uint32, value, name string, logger *slog.Logger) {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		logger.Warn("environment variable can't be parsed as u32, keeping default",
			"var", name, "value", value, "default", *dst)
		return
	}
	*dst = uint32(v)
}
