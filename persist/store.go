package persist

import (
	"github.com/shipq/proptest/rng"
)

// Store loads and saves the seeds of failing cases. Implementations report
// their own I/O problems as diagnostics; a store that cannot be read behaves
// as if it were empty.
type Store interface {
	// Load returns the persisted seeds in the order they were saved.
	Load() []rng.Seed
	// Save appends a failing seed together with the rendering of the value
	// it shrinks to.
	Save(seed rng.Seed, value string)
}

// Record is one persisted failure.
type Record struct {
	Seed rng.Seed
	// Comment is the trailing comment of the line, normally
	// "shrinks to <value>".
	Comment string
	// Line is the 1-based line number in the file it was read from.
	Line int
}

// Seeds extracts the seeds of records, preserving order.
func Seeds(records []Record) []rng.Seed {
	seeds := make([]rng.Seed, 0, len(records))
	for _, r := range records {
		seeds = append(seeds, r.Seed)
	}
	return seeds
}
