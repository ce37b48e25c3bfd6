// ops.go defines the operation vocabulary shared by the metamorphic and
// fuzz tests, the deterministic generator, and the byte decoder that
// turns fuzz input into an operation stream.

package testutil

import (
	"fmt"
	"math/rand/v2"
)

// OpKind enumerates every public operation the harness can drive.
type OpKind uint8

const (
	OpPush OpKind = iota
	OpPop
	OpPopKey
	OpTop
	OpTopKey
	OpSetTop
	OpSetTopKey
	OpLen
	OpCount
	OpKeys
	OpClear
	OpClone
	OpAssign
	OpSwap

	opKindCount
)

// Op is one operation against the handle pool. Handle addresses the
// primary pair; Other is the second pair for Clone (destination),
// Assign (source) and Swap (partner).
type Op struct {
	Kind   OpKind
	Handle int
	Other  int
	Key    Key
	Value  Value
}

// String renders ops the way failure output quotes them.
func (op Op) String() string {
	switch op.Kind {
	case OpPush:
		return fmt.Sprintf("h%d.Push(%q, %d)", op.Handle, op.Key, op.Value)
	case OpPop:
		return fmt.Sprintf("h%d.Pop()", op.Handle)
	case OpPopKey:
		return fmt.Sprintf("h%d.PopKey(%q)", op.Handle, op.Key)
	case OpTop:
		return fmt.Sprintf("h%d.Top()", op.Handle)
	case OpTopKey:
		return fmt.Sprintf("h%d.TopKey(%q)", op.Handle, op.Key)
	case OpSetTop:
		return fmt.Sprintf("h%d.SetTop(%d)", op.Handle, op.Value)
	case OpSetTopKey:
		return fmt.Sprintf("h%d.SetTopKey(%q, %d)", op.Handle, op.Key, op.Value)
	case OpLen:
		return fmt.Sprintf("h%d.Len()", op.Handle)
	case OpCount:
		return fmt.Sprintf("h%d.Count(%q)", op.Handle, op.Key)
	case OpKeys:
		return fmt.Sprintf("h%d.Keys()", op.Handle)
	case OpClear:
		return fmt.Sprintf("h%d.Clear()", op.Handle)
	case OpClone:
		return fmt.Sprintf("h%d = h%d.Clone()", op.Other, op.Handle)
	case OpAssign:
		return fmt.Sprintf("h%d.Assign(h%d)", op.Handle, op.Other)
	case OpSwap:
		return fmt.Sprintf("h%d.Swap(h%d)", op.Handle, op.Other)
	default:
		return fmt.Sprintf("op(kind=%d)", op.Kind)
	}
}

// keySpace is the closed key set generated ops draw from. A small space
// forces per-key stacking, key collisions across handles and key
// exhaustion through PopKey.
var keySpace = []Key{"a", "b", "c", "d", "e"}

// RandomOp draws one operation. Weights favor mutations over queries so
// runs build and churn deep state, and keep the copy operations frequent
// enough that several pairs share storage at any moment.
func RandomOp(rng *rand.Rand) Op {
	op := Op{
		Handle: rng.IntN(HandleCount),
		Other:  rng.IntN(HandleCount),
		Key:    keySpace[rng.IntN(len(keySpace))],
		Value:  rng.IntN(1000),
	}

	roll := rng.IntN(100)

	switch {
	case roll < 30:
		op.Kind = OpPush
	case roll < 42:
		op.Kind = OpPop
	case roll < 54:
		op.Kind = OpPopKey
	case roll < 59:
		op.Kind = OpSetTop
	case roll < 64:
		op.Kind = OpSetTopKey
	case roll < 66:
		op.Kind = OpClear
	case roll < 74:
		op.Kind = OpClone
	case roll < 80:
		op.Kind = OpAssign
	case roll < 85:
		op.Kind = OpSwap
	case roll < 88:
		op.Kind = OpTop
	case roll < 91:
		op.Kind = OpTopKey
	case roll < 94:
		op.Kind = OpLen
	case roll < 97:
		op.Kind = OpCount
	default:
		op.Kind = OpKeys
	}

	return op
}

// GenerateOps produces a deterministic operation stream from a seeded
// source.
func GenerateOps(rng *rand.Rand, n int) []Op {
	ops := make([]Op, 0, n)
	for range n {
		ops = append(ops, RandomOp(rng))
	}

	return ops
}

// opBytes is the encoded size of one op: kind, packed handle pair, key
// index, value.
const opBytes = 4

// DecodeOps turns fuzz bytes into an operation stream. A partial
// trailing op is dropped. Every input decodes to a valid stream so the
// fuzzer never wastes executions on rejected inputs.
func DecodeOps(data []byte) []Op {
	ops := make([]Op, 0, len(data)/opBytes)

	for len(data) >= opBytes {
		ops = append(ops, Op{
			Kind:   OpKind(data[0] % uint8(opKindCount)),
			Handle: int(data[1]) / HandleCount % HandleCount,
			Other:  int(data[1]) % HandleCount,
			Key:    keySpace[int(data[2])%len(keySpace)],
			Value:  int(data[3]),
		})
		data = data[opBytes:]
	}

	return ops
}

// EncodeOps is the inverse of DecodeOps, used to build readable fuzz
// seed corpora from op lists.
func EncodeOps(ops []Op) []byte {
	data := make([]byte, 0, len(ops)*opBytes)

	for _, op := range ops {
		keyIdx := 0

		for i, k := range keySpace {
			if k == op.Key {
				keyIdx = i

				break
			}
		}

		data = append(data,
			byte(op.Kind),
			byte(op.Handle*HandleCount+op.Other),
			byte(keyIdx),
			byte(op.Value),
		)
	}

	return data
}
