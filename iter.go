package keystack

// Seq is the iterator type returned by [Stack.Keys].
//
// It matches the shape of iter.Seq[T] so callers can range over it
// directly or convert it for the iter and slices helpers:
//
//	for k := range s.Keys() {
//	    fmt.Println(k, s.Count(k))
//	}
//
//	keys := slices.Collect(iter.Seq[string](s.Keys()))
type Seq[T any] func(yield func(T) bool)

// Keys returns an iterator over the distinct keys with live entries,
// in ascending key order.
//
// The sequence is bound to a snapshot of the key set taken when Keys
// is called: mutating the stack afterwards neither disturbs a walk in
// progress nor shows it new or removed keys. Queries made during the
// walk (Count, TopKey, ...) see the live stack, so a key popped empty
// since the snapshot reports Count 0. Ranging the sequence again
// replays the same snapshot.
//
// Keys is read-only: it never detaches shared storage and never marks
// the handle unsharable.
func (s *Stack[K, V]) Keys() Seq[K] {
	var keys []K
	if s.data != nil {
		keys = s.data.keysSnapshot()
	}
	return func(yield func(K) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}
