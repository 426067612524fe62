package proptest

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Deterministic(t *testing.T) {
	g1 := New(12345)
	g2 := New(12345)
	for i := 0; i < 100; i++ {
		assert.Equal(t, g1.Intn(1000), g2.Intn(1000))
	}
}

func TestGenerator_ZeroSeed_UsesTime(t *testing.T) {
	g := New(0)
	assert.NotZero(t, g.Seed())
}

func TestIntRange_Bounds(t *testing.T) {
	g := New(1)
	for i := 0; i < 500; i++ {
		n := g.IntRange(-3, 7)
		assert.GreaterOrEqual(t, n, -3)
		assert.LessOrEqual(t, n, 7)
	}
	assert.Equal(t, 4, g.IntRange(4, 4))
	assert.Panics(t, func() { g.IntRange(2, 1) })
}

func TestIdentifier_Valid(t *testing.T) {
	re := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	g := New(7)
	for i := 0; i < 200; i++ {
		id := g.Identifier(10)
		assert.Regexp(t, re, id)
		assert.LessOrEqual(t, len(id), 10)
	}
}

func TestUniqueIdentifiers(t *testing.T) {
	ids := New(3).UniqueIdentifiers(20, 8)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
	assert.Len(t, ids, 20)
}

func TestSQLValue_NilChance(t *testing.T) {
	g := New(5)
	for i := 0; i < 50; i++ {
		assert.Nil(t, g.SQLValue(1.0))
		assert.NotNil(t, g.SQLValue(0.0))
	}
}

func TestSliceN_Length(t *testing.T) {
	g := New(9)
	for i := 0; i < 50; i++ {
		s := SliceN(g, 2, 5, func(g *Generator) int { return g.Intn(3) })
		assert.GreaterOrEqual(t, len(s), 2)
		assert.LessOrEqual(t, len(s), 5)
	}
}

func TestQuickCheck_Passes(t *testing.T) {
	calls := 0
	QuickCheck(t, "always true", func(g *Generator) bool {
		calls++
		return true
	})
	assert.Equal(t, 100, calls)
}

type recordingTB struct {
	testing.TB
	errors []string
}

func (r *recordingTB) Helper()                        {}
func (r *recordingTB) Logf(string, ...any)            {}
func (r *recordingTB) Errorf(format string, _ ...any) { r.errors = append(r.errors, format) }

func TestCheck_ReportsFailure(t *testing.T) {
	rec := &recordingTB{}
	trials := 0
	Check(rec, "always false", Config{NumTrials: 3, Seed: 42}, func(g *Generator) bool {
		trials++
		return false
	})
	assert.Len(t, rec.errors, 1)
	assert.Equal(t, 1, trials)
}

func TestForAll_ReportsFailingValue(t *testing.T) {
	rec := &recordingTB{}
	ForAll(rec, "finds seven", Config{NumTrials: 500, Seed: 11}, func(g *Generator) (int, bool) {
		n := g.Intn(10)
		return n, n != 7
	})
	assert.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "with %+v")
}

func TestForAll_Passes(t *testing.T) {
	rec := &recordingTB{}
	calls := 0
	ForAll(rec, "always true", Config{NumTrials: 5}, func(g *Generator) (string, bool) {
		calls++
		return "", true
	})
	assert.Empty(t, rec.errors)
	assert.Equal(t, 5, calls)
}

func TestOneOf(t *testing.T) {
	g := New(4)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[OneOf(g, "a", "b", "c")] = true
	}
	assert.Len(t, seen, 3)
	assert.Panics(t, func() { OneOf[int](g) })
}

func TestCheck_SeedFromEnv(t *testing.T) {
	t.Setenv(SeedEnv, "99")
	var first int
	Check(t, "records", Config{NumTrials: 1}, func(g *Generator) bool {
		assert.Equal(t, int64(99), g.Seed())
		first = g.Intn(1 << 20)
		return true
	})
	assert.Equal(t, New(99).Intn(1<<20), first)
}
