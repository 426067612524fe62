package proptest

import (
	"os"
	"strconv"
	"testing"
)

// SeedEnv overrides the seed of every property when set.
const SeedEnv = "WELD_PROPTEST_SEED"

// DefaultTrials is used when Config.NumTrials is not positive.
const DefaultTrials = 100

// Config controls how many trials a property gets and from which seed.
type Config struct {
	NumTrials int
	// Seed 0 picks a time-based seed.
	Seed      int64
	Verbose   bool
}

// DefaultConfig runs DefaultTrials trials from a time-based seed.
func DefaultConfig() Config {
	return Config{NumTrials: DefaultTrials}
}

func (c Config) seed() int64 {
	if v := os.Getenv(SeedEnv); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return seed
		}
	}
	return c.Seed
}

func (c Config) trials() int {
	if c.NumTrials <= 0 {
		return DefaultTrials
	}
	return c.NumTrials
}

// run drives prop until it fails or trials are exhausted. fail receives the
// 1-based trial number and the generator seed.
func run[T any](t testing.TB, name string, cfg Config, prop func(*Generator) (T, bool), fail func(trial int, seed int64, val T)) {
	t.Helper()
	g := New(cfg.seed())
	n := cfg.trials()
	if cfg.Verbose {
		t.Logf("property %q: %d trials, seed %d", name, n, g.Seed())
	}
	for i := 1; i <= n; i++ {
		if val, ok := prop(g); !ok {
			fail(i, g.Seed(), val)
			return
		}
	}
}

// Check runs prop cfg.NumTrials times from one generator. The first failing
// trial is reported with the seed that reproduces it.
func Check(t testing.TB, name string, cfg Config, prop func(g *Generator) bool) {
	t.Helper()
	run(t, name, cfg, func(g *Generator) (struct{}, bool) { return struct{}{}, prop(g) },
		func(trial int, seed int64, _ struct{}) {
			t.Errorf("property %q failed on trial %d (%s=%d reproduces)", name, trial, SeedEnv, seed)
		})
}

// QuickCheck is Check with DefaultConfig.
func QuickCheck(t testing.TB, name string, prop func(g *Generator) bool) {
	t.Helper()
	Check(t, name, DefaultConfig(), prop)
}

// ForAll is Check for properties that also return the value they were tested
// on. The value of the failing trial is included in the report.
func ForAll[T any](t testing.TB, name string, cfg Config, prop func(g *Generator) (T, bool)) {
	t.Helper()
	run(t, name, cfg, prop, func(trial int, seed int64, val T) {
		t.Errorf("property %q failed on trial %d with %+v (%s=%d reproduces)", name, trial, val, SeedEnv, seed)
	})
}
