package keystack

import "cmp"

// Stack is a keyed LIFO container with value semantics.
//
// One Stack behaves simultaneously as a single LIFO sequence over all
// entries and as a per-key LIFO for every key that has live entries.
// Clones share storage until one side mutates; see [Stack.Clone] for
// the sharing rules and doc.go for the full copy-semantics contract.
//
// The zero value is an empty, usable stack.
type Stack[K cmp.Ordered, V any] struct {
	data *storage[K, V]

	// tainted is set once TopPtr or TopKeyPtr hands out a live
	// pointer into data. From then on every Clone of this handle
	// deep-copies, because a caller may still write through that
	// pointer and sharing would leak the write into the clone.
	// Swap moves the flag together with the storage it refers to.
	tainted bool
}

// New returns an empty stack.
//
// New is a convenience; the zero value works the same:
//
//	var s keystack.Stack[string, int]
//	s.Push("a", 1)
func New[K cmp.Ordered, V any]() *Stack[K, V] {
	return &Stack[K, V]{}
}

// detach makes the handle the sole owner of its storage, deep-copying
// when the block is shared. Every mutating path calls it first; read
// paths never do.
func (s *Stack[K, V]) detach() {
	switch {
	case s.data == nil:
		s.data = newStorage[K, V]()
	case s.data.refs > 1:
		s.data.refs--
		s.data = s.data.clone()
	}
}

// Push adds value as the newest entry, globally and for key.
func (s *Stack[K, V]) Push(key K, value V) {
	s.detach()
	s.data.push(key, value)
}

// Pop removes the newest entry.
//
// Returns [ErrEmpty] if the stack has no entries; the stack is left
// unchanged.
func (s *Stack[K, V]) Pop() error {
	if s.Len() == 0 {
		return ErrEmpty
	}
	s.detach()
	s.data.popSlot(s.data.tail)
	return nil
}

// PopKey removes the newest entry of key. Entries of other keys keep
// their relative order in the global sequence.
//
// Returns [ErrEmpty] if the stack has no entries at all, and
// [ErrKeyNotFound] if it is non-empty but key has no live entries. In
// both cases the stack is left unchanged.
func (s *Stack[K, V]) PopKey(key K) error {
	if s.Len() == 0 {
		return ErrEmpty
	}
	if s.data.lookup(key) == nil {
		return ErrKeyNotFound
	}
	s.detach()
	// Re-resolve after detach: a copy-on-write clone rebuilds buckets.
	s.data.popSlot(s.data.lookup(key).top())
	return nil
}

// Top returns the key and a copy of the value of the newest entry.
//
// Returns [ErrEmpty] if the stack has no entries.
func (s *Stack[K, V]) Top() (K, V, error) {
	if s.Len() == 0 {
		var k K
		var v V
		return k, v, ErrEmpty
	}
	return s.data.tail.bucket.key, s.data.tail.value, nil
}

// TopKey returns a copy of the value of the newest entry of key.
//
// Returns [ErrEmpty] if the stack has no entries at all, and
// [ErrKeyNotFound] if it is non-empty but key has no live entries.
func (s *Stack[K, V]) TopKey(key K) (V, error) {
	var zero V
	if s.Len() == 0 {
		return zero, ErrEmpty
	}
	b := s.data.lookup(key)
	if b == nil {
		return zero, ErrKeyNotFound
	}
	return b.top().value, nil
}

// TopPtr returns the key of the newest entry and a pointer to its
// value, through which the caller may write.
//
// Handing out the pointer forces a copy-on-write detach and marks the
// handle unsharable: every later [Stack.Clone] of it deep-copies. Use
// [Stack.Top] when read access is enough.
//
// The pointer stays valid (as a plain Go pointer) after the entry is
// popped, but writes to it then no longer affect the stack.
//
// Returns [ErrEmpty] if the stack has no entries.
func (s *Stack[K, V]) TopPtr() (K, *V, error) {
	if s.Len() == 0 {
		var k K
		return k, nil, ErrEmpty
	}
	s.detach()
	s.tainted = true
	return s.data.tail.bucket.key, &s.data.tail.value, nil
}

// TopKeyPtr returns a pointer to the value of the newest entry of key,
// through which the caller may write.
//
// Same sharing consequences as [Stack.TopPtr].
//
// Returns [ErrEmpty] if the stack has no entries at all, and
// [ErrKeyNotFound] if it is non-empty but key has no live entries.
func (s *Stack[K, V]) TopKeyPtr(key K) (*V, error) {
	if s.Len() == 0 {
		return nil, ErrEmpty
	}
	if s.data.lookup(key) == nil {
		return nil, ErrKeyNotFound
	}
	s.detach()
	s.tainted = true
	return &s.data.lookup(key).top().value, nil
}

// Len returns the number of live entries across all keys.
func (s *Stack[K, V]) Len() int {
	if s.data == nil {
		return 0
	}
	return s.data.size
}

// Count returns the number of live entries of key. A key that was
// never pushed and a key whose entries were all popped both count 0.
func (s *Stack[K, V]) Count(key K) int {
	if s.data == nil {
		return 0
	}
	b := s.data.lookup(key)
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Clear removes every entry and clears the unsharable mark.
//
// When the storage is shared, Clear walks away from it instead of
// copying it: other handles keep their entries untouched.
func (s *Stack[K, V]) Clear() {
	switch {
	case s.data == nil:
		// nothing stored
	case s.data.refs > 1:
		s.data.refs--
		s.data = newStorage[K, V]()
	default:
		s.data.clearInPlace()
	}
	s.tainted = false
}

// Clone returns a stack equal to s.
//
// When s is clean the clone shares storage with it and the copy is
// O(1); the first mutation on either side splits them. When s is
// tainted (a live value pointer escaped via [Stack.TopPtr] or
// [Stack.TopKeyPtr]) the clone deep-copies immediately. Either way the
// clone starts clean and never observes later changes to s.
func (s *Stack[K, V]) Clone() *Stack[K, V] {
	if s.data == nil {
		return &Stack[K, V]{}
	}
	if s.tainted {
		return &Stack[K, V]{data: s.data.clone()}
	}
	s.data.refs++
	return &Stack[K, V]{data: s.data}
}

// Assign replaces s's value with a copy of other, following the same
// sharing rules as [Stack.Clone]. Assigning a stack to itself is a
// no-op.
func (s *Stack[K, V]) Assign(other *Stack[K, V]) {
	if s == other {
		return
	}
	tmp := other.Clone()
	s.Swap(tmp)
	// tmp now holds s's previous storage and dies here.
	if tmp.data != nil {
		tmp.data.refs--
	}
}

// Swap exchanges the values of s and other in O(1), unsharable marks
// included. Neither side copies and no entries move.
func (s *Stack[K, V]) Swap(other *Stack[K, V]) {
	s.data, other.data = other.data, s.data
	s.tainted, other.tainted = other.tainted, s.tainted
}
