package util

import (
	"cmp"
	"slices"
)

// Compare orders two keys, negative when a sorts before b
type Compare[K any] func(a, b K) int

// Ascending is the default comparator
func Ascending[K cmp.Ordered](a, b K) int {
	return cmp.Compare(a, b)
}

// Descending reverses Ascending
func Descending[K cmp.Ordered](a, b K) int {
	return cmp.Compare(b, a)
}

// SortBy returns items stably ordered by key. If items are already in order
// the input slice itself is returned, otherwise a sorted copy is returned and
// items is left untouched.
func SortBy[T, K any](items []T, key func(T) K, compare Compare[K]) []T {
	if IsSortedBy(items, key, compare) {
		return items
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return compare(key(a), key(b))
	})
	return sorted
}

// IsSortedBy reports whether adjacent keys are all in order
func IsSortedBy[T, K any](items []T, key func(T) K, compare Compare[K]) bool {
	for i := 1; i < len(items); i++ {
		if compare(key(items[i-1]), key(items[i])) > 0 {
			return false
		}
	}
	return true
}
