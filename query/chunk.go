package query

import "github.com/weldsql/weld/compile"

// ChunkSize returns how many items binding paramsPerItem arguments each fit
// in one statement for d. It is at least 1.
func ChunkSize(d compile.Dialect, paramsPerItem int) int {
	if paramsPerItem <= 0 {
		return d.MaxParams()
	}
	n := d.MaxParams() / paramsPerItem
	if n < 1 {
		return 1
	}
	return n
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	var out [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n:n])
		items = items[n:]
	}
	return out
}
