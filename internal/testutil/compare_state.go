// compare_state.go provides helpers for comparing model vs real stack
// state.

package testutil

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// CompareState performs exhaustive comparison of all observable state
// of the handle pair at index i.
//
// Checks (intentionally redundant for thoroughness):
//   - Len() matches
//   - Keys() sequences match and are strictly ascending
//   - Count()/TopKey() match for every key either side reports, plus
//     one key neither side has (error path)
//   - Top() matches
//   - draining a clone with Top+Pop yields the same (key, value)
//     sequence, which pins the full global order
//   - draining a clone of each key with TopKey+PopKey yields the same
//     value sequence, which pins every per-key order
//
// Draining works on clones, so CompareState leaves the pair untouched
// and doubles as a copy-on-write workout: every call shares storage,
// detaches it and deep-copies it at least once.
func CompareState(tb testing.TB, h *Harness, i int) {
	tb.Helper()

	m, r := h.Models[i], h.Reals[i]

	CompareStateLight(tb, h, i)

	// Per-key queries for the union of reported keys plus a key
	// outside the generator's key space.
	keys := append(CollectKeys(r), m.Keys()...)
	keys = append(keys, "never-pushed")
	slices.Sort(keys)
	keys = slices.Compact(keys)

	for _, k := range keys {
		if mc, rc := m.Count(k), r.Count(k); mc != rc {
			tb.Fatalf("h%d.Count(%q) mismatch\nmodel=%d\nreal=%d", i, k, mc, rc)
		}

		mv, mErr := m.TopKey(k)
		rv, rErr := r.TopKey(k)

		if !errorsMatch(mErr, rErr) {
			tb.Fatalf("h%d.TopKey(%q) error mismatch\nmodel=%v\nreal=%v", i, k, mErr, rErr)
		}

		if mErr == nil && mv != rv {
			tb.Fatalf("h%d.TopKey(%q) value mismatch\nmodel=%d\nreal=%d", i, k, mv, rv)
		}
	}

	// Global order: drain clones entry by entry.
	mDrain := m.Clone()
	rDrain := r.Clone()

	for pos := 0; ; pos++ {
		mk, mv, mErr := mDrain.Top()
		rk, rv, rErr := rDrain.Top()

		if !errorsMatch(mErr, rErr) {
			tb.Fatalf("h%d global drain pos %d: Top error mismatch\nmodel=%v\nreal=%v", i, pos, mErr, rErr)
		}

		if mErr != nil {
			break // both drained
		}

		if mk != rk || mv != rv {
			tb.Fatalf("h%d global drain pos %d: entry mismatch\nmodel=(%q, %d)\nreal=(%q, %d)", i, pos, mk, mv, rk, rv)
		}

		if err := mDrain.Pop(); err != nil {
			tb.Fatalf("h%d global drain pos %d: model Pop failed: %v", i, pos, err)
		}

		if err := rDrain.Pop(); err != nil {
			tb.Fatalf("h%d global drain pos %d: real Pop failed: %v", i, pos, err)
		}
	}

	// Per-key order: drain a fresh clone per key.
	for _, k := range keys {
		mDrain := m.Clone()
		rDrain := r.Clone()

		for pos := 0; mDrain.Count(k) > 0 || rDrain.Count(k) > 0; pos++ {
			mv, mErr := mDrain.TopKey(k)
			rv, rErr := rDrain.TopKey(k)

			if !errorsMatch(mErr, rErr) {
				tb.Fatalf("h%d key %q drain pos %d: TopKey error mismatch\nmodel=%v\nreal=%v", i, k, pos, mErr, rErr)
			}

			if mErr == nil && mv != rv {
				tb.Fatalf("h%d key %q drain pos %d: value mismatch\nmodel=%d\nreal=%d", i, k, pos, mv, rv)
			}

			if err := mDrain.PopKey(k); err != nil {
				tb.Fatalf("h%d key %q drain pos %d: model PopKey failed: %v", i, k, pos, err)
			}

			if err := rDrain.PopKey(k); err != nil {
				tb.Fatalf("h%d key %q drain pos %d: real PopKey failed: %v", i, k, pos, err)
			}
		}
	}
}

// CompareStateLight performs a fast subset of state comparison: Len,
// Top and the Keys sequence. Use it for frequent intermediate checks
// where full CompareState would dominate the run.
func CompareStateLight(tb testing.TB, h *Harness, i int) {
	tb.Helper()

	m, r := h.Models[i], h.Reals[i]

	if mLen, rLen := m.Len(), r.Len(); mLen != rLen {
		tb.Fatalf("h%d.Len() mismatch\nmodel=%d\nreal=%d", i, mLen, rLen)
	}

	mk, mv, mErr := m.Top()
	rk, rv, rErr := r.Top()

	if !errorsMatch(mErr, rErr) {
		tb.Fatalf("h%d.Top() error mismatch\nmodel=%v\nreal=%v", i, mErr, rErr)
	}

	if mErr == nil && (mk != rk || mv != rv) {
		tb.Fatalf("h%d.Top() mismatch\nmodel=(%q, %d)\nreal=(%q, %d)", i, mk, mv, rk, rv)
	}

	mKeys := m.Keys()
	rKeys := CollectKeys(r)

	if diff := DiffKeys(mKeys, rKeys); diff != "" {
		tb.Fatalf("h%d.Keys() mismatch (-model +real):\n%s", i, diff)
	}

	if !slices.IsSorted(rKeys) {
		tb.Fatalf("h%d.Keys() not ascending: %q", i, rKeys)
	}

	for _, k := range rKeys {
		if r.Count(k) <= 0 {
			tb.Fatalf("h%d.Keys() yielded %q but Count is %d", i, k, r.Count(k))
		}
	}
}

// CompareAll runs CompareState over the whole pool.
func CompareAll(tb testing.TB, h *Harness) {
	tb.Helper()

	for i := range HandleCount {
		CompareState(tb, h, i)
	}
}

// DiffKeys returns a diff string if the key sequences differ, or "" if
// equal. nil and empty compare equal.
func DiffKeys(modelKeys, realKeys []Key) string {
	if slices.Equal(modelKeys, realKeys) {
		return ""
	}

	return cmp.Diff(modelKeys, realKeys, cmpopts.EquateEmpty())
}

// errorsMatch checks if two errors represent the same error class.
// Uses errors.Is bidirectionally because either error may wrap the
// other.
func errorsMatch(mErr, rErr error) bool {
	if mErr == nil && rErr == nil {
		return true
	}

	if mErr == nil || rErr == nil {
		return false
	}

	return errors.Is(mErr, rErr) || errors.Is(rErr, mErr)
}
