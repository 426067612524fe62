// Package proptest provides property-based testing utilities with seeded
// random generation for reproducible tests.
//
// When a property fails, the seed is logged so the failure can be replayed
// with PROPTEST_SEED:
//
//	func TestPlaceholders(t *testing.T) {
//	    proptest.QuickCheck(t, "args match placeholders", func(g *proptest.Generator) bool {
//	        n := g.IntRange(1, 10)
//	        return n >= 1 && n <= 10
//	    })
//	}
package proptest

import (
	"math/rand"
	"time"
)

// Charsets for string generation
const (
	CharsetAlpha      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetAlphaLower = "abcdefghijklmnopqrstuvwxyz"
	CharsetDigits     = "0123456789"
	CharsetAlphaNum   = CharsetAlpha + CharsetDigits
	CharsetPrintable  = CharsetAlphaNum + " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	CharsetIdentStart = CharsetAlphaLower + "_"
	CharsetIdentBody  = CharsetAlphaLower + CharsetDigits + "_"
)

// Generator wraps a seeded random number generator.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New creates a new Generator with the given seed.
// If seed is 0, uses the current time as the seed.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed used by this generator.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Intn returns a random int in [0, n).
// Panics if n <= 0.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// IntRange returns a random int in [min, max].
// Panics if min > max.
func (g *Generator) IntRange(min, max int) int {
	if min > max {
		panic("proptest: IntRange min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

// Int64Range returns a random int64 in [min, max].
func (g *Generator) Int64Range(min, max int64) int64 {
	if min > max {
		panic("proptest: Int64Range min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Int63n(max-min+1)
}

// Float64 returns a random float64 in [0.0, 1.0).
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Bool returns a random boolean with 50% probability for each value.
func (g *Generator) Bool() bool {
	return g.rng.Intn(2) == 1
}

// BoolWithProb returns true with the given probability (0.0 to 1.0).
func (g *Generator) BoolWithProb(prob float64) bool {
	return g.rng.Float64() < prob
}

// StringFrom returns a random string of length [0, maxLen] drawn from charset.
func (g *Generator) StringFrom(charset string, maxLen int) string {
	length := g.IntRange(0, maxLen)
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[g.Intn(len(charset))]
	}
	return string(b)
}

// Identifier returns a valid lowercase SQL identifier of length [1, maxLen].
func (g *Generator) Identifier(maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1
	}
	length := g.IntRange(1, maxLen)
	b := make([]byte, length)
	b[0] = CharsetIdentStart[g.Intn(len(CharsetIdentStart))]
	for i := 1; i < length; i++ {
		b[i] = CharsetIdentBody[g.Intn(len(CharsetIdentBody))]
	}
	return string(b)
}

// SQLValue returns a random bindable value: int64, float64, string, bool or
// nil, with nil drawn at nilChance.
func (g *Generator) SQLValue(nilChance float64) any {
	if g.BoolWithProb(nilChance) {
		return nil
	}
	switch g.Intn(4) {
	case 0:
		return g.Int64Range(-1000, 1000)
	case 1:
		return float64(g.IntRange(0, 10000)) / 100
	case 2:
		return g.StringFrom(CharsetPrintable, 12)
	default:
		return g.Bool()
	}
}
