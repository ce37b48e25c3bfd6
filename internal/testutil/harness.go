// Package testutil provides the model-vs-real harness shared by
// keystack's behavior, metamorphic and fuzz tests.
package testutil

import (
	"testing"

	"github.com/calvinalkan/keystack"
	"github.com/calvinalkan/keystack/model"
)

// Key and Value are the types the harness instantiates stacks with.
// Strings and small ints keep generated ops readable in failure output.
type (
	Key   = string
	Value = int
)

// HandleCount is the size of the handle pool ops address. Four handles
// are enough to express every sharing shape at once: a source, a
// sibling clone, an assignment target and a swap partner.
const HandleCount = 4

// Harness drives a pool of model/real handle pairs through one
// operation stream. Models[i] predicts the observable behavior of
// Reals[i]; the model side has no sharing, so any copy-on-write leak
// between real handles shows up as a divergence.
type Harness struct {
	Models [HandleCount]*model.StackModel[Key, Value]
	Reals  [HandleCount]*keystack.Stack[Key, Value]
}

// NewHarness returns a harness with every handle empty.
func NewHarness() *Harness {
	h := &Harness{}
	for i := range HandleCount {
		h.Models[i] = model.New[Key, Value]()
		h.Reals[i] = keystack.New[Key, Value]()
	}

	return h
}

// OpResult captures everything one operation returns. Fields are only
// meaningful for the op kinds that produce them.
type OpResult struct {
	Err   error
	Key   Key
	Value Value
	N     int
	Keys  []Key
}

// ApplyModel executes op against the model side.
func ApplyModel(h *Harness, op Op) OpResult {
	m := h.Models[op.Handle]

	switch op.Kind {
	case OpPush:
		m.Push(op.Key, op.Value)

		return OpResult{}
	case OpPop:
		return OpResult{Err: m.Pop()}
	case OpPopKey:
		return OpResult{Err: m.PopKey(op.Key)}
	case OpTop:
		k, v, err := m.Top()

		return OpResult{Err: err, Key: k, Value: v}
	case OpTopKey:
		v, err := m.TopKey(op.Key)

		return OpResult{Err: err, Value: v}
	case OpSetTop:
		return OpResult{Err: m.SetTop(op.Value)}
	case OpSetTopKey:
		return OpResult{Err: m.SetTopKey(op.Key, op.Value)}
	case OpLen:
		return OpResult{N: m.Len()}
	case OpCount:
		return OpResult{N: m.Count(op.Key)}
	case OpKeys:
		return OpResult{Keys: m.Keys()}
	case OpClear:
		m.Clear()

		return OpResult{}
	case OpClone:
		h.Models[op.Other] = m.Clone()

		return OpResult{}
	case OpAssign:
		h.Models[op.Handle] = h.Models[op.Other].Clone()

		return OpResult{}
	case OpSwap:
		h.Models[op.Handle], h.Models[op.Other] = h.Models[op.Other], h.Models[op.Handle]

		return OpResult{}
	default:
		panic("testutil: unknown op kind")
	}
}

// ApplyReal executes op against the real side. Set operations write
// through the pointer accessors, so fuzzed runs exercise the taint
// path constantly.
func ApplyReal(h *Harness, op Op) OpResult {
	s := h.Reals[op.Handle]

	switch op.Kind {
	case OpPush:
		s.Push(op.Key, op.Value)

		return OpResult{}
	case OpPop:
		return OpResult{Err: s.Pop()}
	case OpPopKey:
		return OpResult{Err: s.PopKey(op.Key)}
	case OpTop:
		k, v, err := s.Top()

		return OpResult{Err: err, Key: k, Value: v}
	case OpTopKey:
		v, err := s.TopKey(op.Key)

		return OpResult{Err: err, Value: v}
	case OpSetTop:
		_, ptr, err := s.TopPtr()
		if err == nil {
			*ptr = op.Value
		}

		return OpResult{Err: err}
	case OpSetTopKey:
		ptr, err := s.TopKeyPtr(op.Key)
		if err == nil {
			*ptr = op.Value
		}

		return OpResult{Err: err}
	case OpLen:
		return OpResult{N: s.Len()}
	case OpCount:
		return OpResult{N: s.Count(op.Key)}
	case OpKeys:
		return OpResult{Keys: CollectKeys(s)}
	case OpClear:
		s.Clear()

		return OpResult{}
	case OpClone:
		h.Reals[op.Other] = s.Clone()

		return OpResult{}
	case OpAssign:
		s.Assign(h.Reals[op.Other])

		return OpResult{}
	case OpSwap:
		s.Swap(h.Reals[op.Other])

		return OpResult{}
	default:
		panic("testutil: unknown op kind")
	}
}

// AssertOpMatch fails the test if the two sides disagree about what op
// returned.
func AssertOpMatch(tb testing.TB, op Op, modelResult, realResult OpResult) {
	tb.Helper()

	if !errorsMatch(modelResult.Err, realResult.Err) {
		tb.Fatalf("%s error mismatch\nmodel=%v\nreal=%v", op, modelResult.Err, realResult.Err)
	}

	if modelResult.Err != nil {
		return
	}

	if modelResult.Key != realResult.Key {
		tb.Fatalf("%s key mismatch\nmodel=%q\nreal=%q", op, modelResult.Key, realResult.Key)
	}

	if modelResult.Value != realResult.Value {
		tb.Fatalf("%s value mismatch\nmodel=%d\nreal=%d", op, modelResult.Value, realResult.Value)
	}

	if modelResult.N != realResult.N {
		tb.Fatalf("%s count mismatch\nmodel=%d\nreal=%d", op, modelResult.N, realResult.N)
	}

	if diff := DiffKeys(modelResult.Keys, realResult.Keys); diff != "" {
		tb.Fatalf("%s keys mismatch (-model +real):\n%s", op, diff)
	}
}

// CollectKeys materializes a stack's key iterator.
func CollectKeys(s *keystack.Stack[Key, Value]) []Key {
	var keys []Key

	s.Keys()(func(k Key) bool {
		keys = append(keys, k)

		return true
	})

	return keys
}
