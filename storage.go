package keystack

import (
	"cmp"

	"github.com/google/btree"
)

// keyTreeDegree is the branching factor of the key tree. Lookups stay
// O(log K) for any degree; 8 keeps nodes small for typical key counts.
const keyTreeDegree = 8

// slot is one live entry. Slots form the global order as an intrusive
// doubly-linked list (head oldest, tail newest) and carry a back
// reference to their key bucket so erasure needs no second lookup.
type slot[K cmp.Ordered, V any] struct {
	value  V
	bucket *bucket[K, V]
	prev   *slot[K, V]
	next   *slot[K, V]
}

// bucket groups the live slots of one key. entries is the per-key
// LIFO, newest at the tail. Each *slot doubles as the position of that
// entry in the global order. A bucket is in the key tree iff it has at
// least one entry.
type bucket[K cmp.Ordered, V any] struct {
	key     K
	entries []*slot[K, V]
}

// storage is the block one or more Stack handles share. All methods
// assume the caller holds it exclusively; sharing and copy-on-write
// are the handle's concern (see Stack.detach).
type storage[K cmp.Ordered, V any] struct {
	refs int
	head *slot[K, V]
	tail *slot[K, V]
	tree *btree.BTreeG[*bucket[K, V]]
	size int
}

func newStorage[K cmp.Ordered, V any]() *storage[K, V] {
	return &storage[K, V]{
		refs: 1,
		tree: btree.NewG(keyTreeDegree, func(a, b *bucket[K, V]) bool {
			return cmp.Less(a.key, b.key)
		}),
	}
}

// lookup returns the bucket for key, or nil if the key has no live
// entries.
func (s *storage[K, V]) lookup(key K) *bucket[K, V] {
	b, ok := s.tree.Get(&bucket[K, V]{key: key})
	if !ok {
		return nil
	}
	return b
}

// push appends a new entry as the global top and the per-key top.
//
// Link order matters: the slot is fully built before anything
// observable references it, and a fresh bucket joins the tree only
// after it holds the slot, so no query ever sees an empty bucket or a
// half-linked slot.
func (s *storage[K, V]) push(key K, value V) {
	b := s.lookup(key)
	fresh := b == nil
	if fresh {
		b = &bucket[K, V]{key: key}
	}
	sl := &slot[K, V]{value: value, bucket: b}

	sl.prev = s.tail
	if s.tail != nil {
		s.tail.next = sl
	} else {
		s.head = sl
	}
	s.tail = sl

	b.entries = append(b.entries, sl)
	if fresh {
		s.tree.ReplaceOrInsert(b)
	}
	s.size++
}

// popSlot erases sl, which must be the newest entry of its bucket.
// Both pop paths satisfy that: the global top is also its key's top
// because per-key order is a subsequence of global order.
func (s *storage[K, V]) popSlot(sl *slot[K, V]) {
	if sl.prev != nil {
		sl.prev.next = sl.next
	} else {
		s.head = sl.next
	}
	if sl.next != nil {
		sl.next.prev = sl.prev
	} else {
		s.tail = sl.prev
	}
	sl.prev = nil
	sl.next = nil

	b := sl.bucket
	n := len(b.entries)
	b.entries[n-1] = nil // drop the reference so the slot can be collected
	b.entries = b.entries[:n-1]
	if len(b.entries) == 0 {
		s.tree.Delete(b)
	}
	s.size--
}

// top returns the newest slot of key's bucket.
func (b *bucket[K, V]) top() *slot[K, V] {
	return b.entries[len(b.entries)-1]
}

// clone deep-copies by replaying the global order oldest to newest
// through push, rebuilding buckets, tree and cross links from scratch.
// The result is observably identical to s and owned by one handle.
func (s *storage[K, V]) clone() *storage[K, V] {
	c := newStorage[K, V]()
	for sl := s.head; sl != nil; sl = sl.next {
		c.push(sl.bucket.key, sl.value)
	}
	return c
}

// clearInPlace empties the block without replacing it. Only valid when
// the caller is the sole owner.
func (s *storage[K, V]) clearInPlace() {
	s.head = nil
	s.tail = nil
	s.tree.Clear(false)
	s.size = 0
}

// keysSnapshot returns the distinct live keys in ascending order.
func (s *storage[K, V]) keysSnapshot() []K {
	keys := make([]K, 0, s.tree.Len())
	s.tree.Ascend(func(b *bucket[K, V]) bool {
		keys = append(keys, b.key)
		return true
	})
	return keys
}
