// Package model provides a deliberately simple, in-memory state model of
// keystack's publicly observable behavior.
//
// The model is intentionally easy to audit: it keeps one flat slice of
// entries in push order and derives every query from it with linear
// scans. It has no sharing, no copy-on-write and no cross references;
// those are keystack implementation tactics with no observable surface
// of their own.
package model

import (
	"cmp"
	"slices"

	"github.com/calvinalkan/keystack"
)

// EntryRecord is one live entry.
type EntryRecord[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// StackModel is the observable state of one stack: the live entries,
// oldest to newest. The newest entry is the global top; the newest
// entry with a given key is that key's top.
type StackModel[K cmp.Ordered, V any] struct {
	Entries []EntryRecord[K, V]
}

// New returns an empty model.
func New[K cmp.Ordered, V any]() *StackModel[K, V] {
	return &StackModel[K, V]{}
}

// Clone makes a deep copy so metamorphic tests can fork the exact same
// state. It preserves the nil vs empty slice distinction so
// cmp.Diff(original, clone) returns empty without cmpopts.EquateEmpty().
func (m *StackModel[K, V]) Clone() *StackModel[K, V] {
	if m == nil {
		return nil
	}

	var entries []EntryRecord[K, V]
	if m.Entries != nil {
		entries = make([]EntryRecord[K, V], len(m.Entries))
		copy(entries, m.Entries)
	}

	return &StackModel[K, V]{Entries: entries}
}

// Push appends a new entry as the global and per-key top.
func (m *StackModel[K, V]) Push(key K, value V) {
	m.Entries = append(m.Entries, EntryRecord[K, V]{Key: key, Value: value})
}

// Pop removes the newest entry.
func (m *StackModel[K, V]) Pop() error {
	if len(m.Entries) == 0 {
		return keystack.ErrEmpty
	}

	m.Entries = m.Entries[:len(m.Entries)-1]

	return nil
}

// PopKey removes the newest entry with the given key.
func (m *StackModel[K, V]) PopKey(key K) error {
	if len(m.Entries) == 0 {
		return keystack.ErrEmpty
	}

	idx, found := m.newestIndexOf(key)
	if !found {
		return keystack.ErrKeyNotFound
	}

	m.Entries = slices.Delete(m.Entries, idx, idx+1)

	return nil
}

// Top returns the key and value of the newest entry.
func (m *StackModel[K, V]) Top() (K, V, error) {
	if len(m.Entries) == 0 {
		var zeroK K
		var zeroV V

		return zeroK, zeroV, keystack.ErrEmpty
	}

	top := m.Entries[len(m.Entries)-1]

	return top.Key, top.Value, nil
}

// TopKey returns the value of the newest entry with the given key.
func (m *StackModel[K, V]) TopKey(key K) (V, error) {
	var zero V

	if len(m.Entries) == 0 {
		return zero, keystack.ErrEmpty
	}

	idx, found := m.newestIndexOf(key)
	if !found {
		return zero, keystack.ErrKeyNotFound
	}

	return m.Entries[idx].Value, nil
}

// SetTop overwrites the value of the newest entry. It models a caller
// writing through the pointer returned by Stack.TopPtr.
func (m *StackModel[K, V]) SetTop(value V) error {
	if len(m.Entries) == 0 {
		return keystack.ErrEmpty
	}

	m.Entries[len(m.Entries)-1].Value = value

	return nil
}

// SetTopKey overwrites the value of the newest entry with the given
// key. It models a caller writing through the pointer returned by
// Stack.TopKeyPtr.
func (m *StackModel[K, V]) SetTopKey(key K, value V) error {
	if len(m.Entries) == 0 {
		return keystack.ErrEmpty
	}

	idx, found := m.newestIndexOf(key)
	if !found {
		return keystack.ErrKeyNotFound
	}

	m.Entries[idx].Value = value

	return nil
}

// Len returns the number of live entries.
func (m *StackModel[K, V]) Len() int {
	return len(m.Entries)
}

// Count returns the number of live entries with the given key.
func (m *StackModel[K, V]) Count(key K) int {
	count := 0

	for _, e := range m.Entries {
		if e.Key == key {
			count++
		}
	}

	return count
}

// Keys returns the distinct keys with live entries in ascending order.
func (m *StackModel[K, V]) Keys() []K {
	var keys []K

	for _, e := range m.Entries {
		if !slices.Contains(keys, e.Key) {
			keys = append(keys, e.Key)
		}
	}

	slices.Sort(keys)

	return keys
}

// Clear removes every entry.
func (m *StackModel[K, V]) Clear() {
	m.Entries = nil
}

// newestIndexOf scans from newest to oldest for the key's top entry.
func (m *StackModel[K, V]) newestIndexOf(key K) (int, bool) {
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].Key == key {
			return i, true
		}
	}

	return 0, false
}
