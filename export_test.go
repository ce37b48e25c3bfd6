package keystack

// Export internal state for testing.
// This file is only compiled during tests.

import "cmp"

// SharesStorageForTesting reports whether a and b alias the same
// storage block right now.
func SharesStorageForTesting[K cmp.Ordered, V any](a, b *Stack[K, V]) bool {
	return a.data != nil && a.data == b.data
}

// TaintedForTesting reports whether s carries the unsharable mark.
func TaintedForTesting[K cmp.Ordered, V any](s *Stack[K, V]) bool {
	return s.tainted
}

// RefsForTesting returns the share count of s's storage block, 0 for a
// stack that has never allocated.
func RefsForTesting[K cmp.Ordered, V any](s *Stack[K, V]) int {
	if s.data == nil {
		return 0
	}

	return s.data.refs
}
