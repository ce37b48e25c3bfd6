// Package keystack provides a keyed LIFO container with cheap value
// semantics.
//
// A [Stack] is one LIFO sequence over all entries and, at the same
// time, a per-key LIFO for every key currently stored. Pop removes the
// global newest entry, PopKey the newest entry of one key, and both
// views stay consistent: per-key order is always a subsequence of
// global order. Keyed lookups cost O(log K) in the number of distinct
// keys; push and both pops are O(log K) with O(1) list surgery.
//
// # Basic Usage
//
//	s := keystack.New[string, int]()
//	s.Push("a", 1)
//	s.Push("b", 2)
//	s.Push("a", 3)
//
//	k, v, _ := s.Top()      // "a", 3
//	v, _ = s.TopKey("b")    // 2
//	_ = s.PopKey("b")       // removes ("b", 2), global order keeps a:1 a:3
//
//	for k := range s.Keys() {
//	    fmt.Println(k, s.Count(k))
//	}
//
// # Copy Semantics
//
// Stacks copy like values, not like references. [Stack.Clone] and
// [Stack.Assign] produce a stack that is equal now and independent
// forever: no operation on one side is ever observable on the other.
//
// Under the hood clones share storage until one side mutates, so
// copying is O(1) in the common case. Two accessors break sharing
// eagerly: [Stack.TopPtr] and [Stack.TopKeyPtr] hand out a live
// pointer into storage, so they detach immediately and mark the handle
// unsharable, making every later clone of it a deep copy. [Stack.Top]
// and [Stack.TopKey] return copies and have no such cost.
//
// Storage is reclaimed by the garbage collector. A handle that is
// dropped without being cleared or reassigned can leave its old block
// looking shared, which costs the surviving handle one redundant deep
// copy on its next mutation; independence is never affected.
//
// # Concurrency
//
// A Stack is owned by one goroutine at a time. No operation is safe
// for concurrent use with any mutating operation on the same handle,
// and handles that share storage must not be used concurrently either.
// Callers that need cross-goroutine access serialize it themselves.
//
// # Error Handling
//
// Fallible operations return one of two sentinels, checked with
// [errors.Is]: [ErrEmpty] when the stack has no entries, and
// [ErrKeyNotFound] when it is non-empty but the requested key has no
// live entries. A failed operation leaves the stack exactly as it was.
package keystack
