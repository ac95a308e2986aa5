package store

import "sort"

// sortByID orders listings deterministically so file and mongo backends
// agree on iteration order.
func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
