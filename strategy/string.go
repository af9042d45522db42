package strategy

import (
	"github.com/shipq/proptest/runner"
)

// Character sets for String.
const (
	CharsetAlphaLower = "abcdefghijklmnopqrstuvwxyz"
	CharsetDigits     = "0123456789"
	CharsetAlphaNum   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" + CharsetDigits
)

// String generates strings of up to maxLen characters drawn from charset.
// Shrinking shortens the string and moves characters toward the start of
// charset.
func String(charset string, maxLen int) runner.Strategy[string] {
	chars := []rune(charset)
	if len(chars) == 0 {
		panic("strategy: String called with an empty charset")
	}
	return Map(Slice(SampledFrom(chars...), 0, maxLen), func(rs []rune) string {
		return string(rs)
	})
}
