package proptest

// OneOf returns a random element from the provided values.
// Panics if values is empty.
func OneOf[T any](g *Generator, values ...T) T {
	if len(values) == 0 {
		panic("proptest: OneOf called with no values")
	}
	return values[g.Intn(len(values))]
}

// Pick returns a random element from a non-empty slice.
func Pick[T any](g *Generator, slice []T) T {
	if len(slice) == 0 {
		panic("proptest: Pick called with empty slice")
	}
	return slice[g.Intn(len(slice))]
}

// SliceN generates a slice with length in [minLen, maxLen].
func SliceN[T any](g *Generator, minLen, maxLen int, gen func(*Generator) T) []T {
	length := g.IntRange(minLen, maxLen)
	result := make([]T, length)
	for i := range result {
		result[i] = gen(g)
	}
	return result
}

// UniqueIdentifiers returns n distinct identifiers of length up to maxLen.
func (g *Generator) UniqueIdentifiers(n, maxLen int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		id := g.Identifier(maxLen)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
