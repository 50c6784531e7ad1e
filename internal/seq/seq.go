// Package seq provides generic slice transforms and the sequential batch runner used to drive catalog API calls one at a time.
//
// # Transforms
//
// [Chunk], [Flatten], [AllEqualLength] and [Unzip] are pure functions with no I/O.
// They exist to merge per-selector scrape results positionally and to split track lists
// into batches that respect the catalog's request limits.
//
// # Runner
//
// [RunSequential] executes an ordered list of [Job] values strictly one after another.
// Failed jobs leave a nil slot in the result unless [StopOnFailure] is set.
package seq

// Chunk splits items into consecutive groups of at most size elements. The last group may be shorter.
//
// An empty input yields a single empty group.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic("seq: chunk size must be positive")
	}

	chunks := [][]T{{}}
	for _, item := range items {
		last := len(chunks) - 1
		if len(chunks[last]) >= size {
			chunks = append(chunks, []T{item})
			continue
		}
		chunks[last] = append(chunks[last], item)
	}
	return chunks
}

// Flatten concatenates one level of nesting. Deeper slices are kept as elements.
func Flatten[T any](items [][]T) []T {
	n := 0
	for _, group := range items {
		n += len(group)
	}

	flat := make([]T, 0, n)
	for _, group := range items {
		flat = append(flat, group...)
	}
	return flat
}

// AllEqualLength reports whether every row has the same length as the first. An empty input is trivially true.
func AllEqualLength[T any](rows [][]T) bool {
	if len(rows) == 0 {
		return true
	}
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return false
		}
	}
	return true
}

// Unzip transposes rows of equal length:
//
//	[[a b c] [a b c]] -> [[a a] [b b] [c c]]
//
// Callers must check [AllEqualLength] first; rows shorter than the first row panic on index.
func Unzip[T any](rows [][]T) [][]T {
	if len(rows) == 0 {
		return [][]T{}
	}

	groups := make([][]T, len(rows[0]))
	for j := range groups {
		group := make([]T, len(rows))
		for i, row := range rows {
			group[i] = row[j]
		}
		groups[j] = group
	}
	return groups
}
