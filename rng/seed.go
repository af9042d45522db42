package rng

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
)

// SeedFromString derives a seed from arbitrary text by hashing it with
// BLAKE2b and keeping the first 128 bits. The same text always yields the
// same seed.
func SeedFromString(text string) Seed {
	sum := blake2b.Sum256([]byte(text))
	var s Seed
	for i := range s {
		s[i] = binary.LittleEndian.Uint32(sum[i*4:])
	}
	if s.IsZero() {
		return fallbackSeed
	}
	return s
}

// EntropySeed returns a seed that differs between calls and processes. It is
// used when no fixed seed was configured.
func EntropySeed() Seed {
	return SeedFromString(fmt.Sprintf("%d/%d", time.Now().UnixNano(), os.Getpid()))
}
