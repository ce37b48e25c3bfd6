package testutil

import (
	"fmt"
	"strings"
	"testing"
)

// RunConfig configures a behavior test run.
type RunConfig struct {
	// LightCompareEveryN runs CompareStateLight on the touched pair
	// every N operations (0 to disable).
	LightCompareEveryN int

	// HeavyCompareEveryN runs CompareAll every N operations (0 to
	// disable). Heavy comparison drains clones and dominates the run
	// when enabled too often.
	HeavyCompareEveryN int
}

// DefaultRunConfig returns a balanced configuration for behavior runs.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		LightCompareEveryN: 1,
		HeavyCompareEveryN: 10,
	}
}

// RunBehavior executes an operation stream against a fresh harness and
// compares model and real behavior after every step. Failure output
// quotes the full op history so any divergence is replayable by hand.
func RunBehavior(tb testing.TB, ops []Op, cfg RunConfig) {
	tb.Helper()

	h := NewHarness()
	history := make([]string, 0, len(ops))

	for opIndex, op := range ops {
		history = append(history, op.String())

		modelRes := ApplyModel(h, op)
		realRes := ApplyReal(h, op)

		assertOpMatchWithHistory(tb, op, modelRes, realRes, history)

		if cfg.LightCompareEveryN > 0 && (opIndex+1)%cfg.LightCompareEveryN == 0 {
			CompareStateLight(tb, h, op.Handle)
		}

		if cfg.HeavyCompareEveryN > 0 && (opIndex+1)%cfg.HeavyCompareEveryN == 0 {
			CompareAll(tb, h)
		}
	}

	CompareAll(tb, h)
}

// FormatOps renders an op history for failure messages.
func FormatOps(history []string) string {
	var b strings.Builder

	b.WriteString("op history:\n")

	for i, line := range history {
		fmt.Fprintf(&b, "  %3d: %s\n", i, line)
	}

	return b.String()
}

func assertOpMatchWithHistory(tb testing.TB, op Op, modelRes, realRes OpResult, history []string) {
	tb.Helper()

	if !errorsMatch(modelRes.Err, realRes.Err) {
		tb.Fatalf("%s error mismatch\nmodel=%v\nreal=%v\n%s", op, modelRes.Err, realRes.Err, FormatOps(history))
	}

	if modelRes.Err != nil {
		return
	}

	if modelRes.Key != realRes.Key || modelRes.Value != realRes.Value || modelRes.N != realRes.N {
		tb.Fatalf("%s result mismatch\nmodel=%+v\nreal=%+v\n%s", op, modelRes, realRes, FormatOps(history))
	}

	if diff := DiffKeys(modelRes.Keys, realRes.Keys); diff != "" {
		tb.Fatalf("%s keys mismatch (-model +real):\n%s\n%s", op, diff, FormatOps(history))
	}
}
