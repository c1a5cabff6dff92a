package stridecheck

import (
	"reflect"
	"testing"

	"stridecheck/cycles"
	"stridecheck/ranges"
)

// buildArray assembles a (subject, task) cycle array with 5 points per
// cycle, so phase points land on 0, 25, 50, 75 and 100 percent. The
// sample at (cycle, point, variable) comes from fn.
func buildArray(t *testing.T, subject, task string, variables []string, nCycles int, fn func(c, p, v int) float64) *cycles.Array {
	t.Helper()
	table, err := cycles.NewTable(5, variables)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	values := make([]float64, len(variables))
	for c := 0; c < nCycles; c++ {
		for p := 0; p < 5; p++ {
			for v := range values {
				values[v] = fn(c, p, v)
			}
			if err := table.Append(subject, task, float64(p), values); err != nil {
				t.Fatalf("Append error: %v", err)
			}
		}
	}
	arr, _, err := table.Extract(subject, task, nil)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	return arr
}

func specSnapshot(t *testing.T, task string, byVariable map[string][]ranges.Checkpoint) *ranges.Snapshot {
	t.Helper()
	store := ranges.NewStore()
	for variable, cps := range byVariable {
		if err := store.Replace(task, variable, cps); err != nil {
			t.Fatalf("Replace error: %v", err)
		}
	}
	return store.Snapshot()
}

func TestValidateSingleCheckpointAppliesUniformly(t *testing.T) {
	arr := buildArray(t, "S01", "walking", []string{"knee"}, 1, func(c, p, v int) float64 {
		if p == 3 {
			return 1.5
		}
		return 0.5
	})
	snap := specSnapshot(t, "walking", map[string][]ranges.Checkpoint{
		"knee": {{PhasePercent: 50, Min: 0, Max: 1}},
	})

	failures, cov, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("failure count = %d, want 1: %+v", len(failures), failures)
	}
	f := failures[0]
	if f.Subject != "S01" || f.Task != "walking" || f.CycleIndex != 0 || f.Variable != "knee" {
		t.Fatalf("unexpected failure identity: %+v", f)
	}
	if f.PhasePercent != 75 || f.Observed != 1.5 || f.Min != 0 || f.Max != 1 {
		t.Fatalf("unexpected failure bounds: %+v", f)
	}
	if cov.EvaluatedSamples != 5 || cov.ConstrainedSamples != 5 {
		t.Fatalf("coverage = %+v, want 5 evaluated, 5 constrained", cov)
	}
}

func TestValidateInterpolatedBounds(t *testing.T) {
	// Bounds widen linearly from [0, 1] at 0% to [0, 2] at 100%, so the
	// interpolated maximum at 50% is 1.5.
	arr := buildArray(t, "S01", "walking", []string{"knee"}, 1, func(c, p, v int) float64 {
		if p == 2 {
			return 1.6
		}
		return 0.5
	})
	snap := specSnapshot(t, "walking", map[string][]ranges.Checkpoint{
		"knee": {
			{PhasePercent: 0, Min: 0, Max: 1},
			{PhasePercent: 100, Min: 0, Max: 2},
		},
	})

	failures, _, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("failure count = %d, want 1: %+v", len(failures), failures)
	}
	if f := failures[0]; f.PhasePercent != 50 || f.Max != 1.5 {
		t.Fatalf("unexpected interpolated failure: %+v", f)
	}
}

func TestValidateBoundsAreInclusive(t *testing.T) {
	arr := buildArray(t, "S01", "walking", []string{"knee"}, 1, func(c, p, v int) float64 {
		switch p {
		case 0:
			return 0 // exactly min
		case 4:
			return 1 // exactly max
		default:
			return 0.5
		}
	})
	snap := specSnapshot(t, "walking", map[string][]ranges.Checkpoint{
		"knee": {{PhasePercent: 0, Min: 0, Max: 1}},
	})
	failures, _, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("boundary samples must pass, got %+v", failures)
	}
}

func TestValidateUnconstrainedVariableCountsInCoverage(t *testing.T) {
	arr := buildArray(t, "S01", "walking", []string{"knee", "novel_signal"}, 2, func(c, p, v int) float64 {
		return 0.5
	})
	snap := specSnapshot(t, "walking", map[string][]ranges.Checkpoint{
		"knee": {{PhasePercent: 0, Min: 0, Max: 1}},
	})

	failures, cov, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("unconstrained variable must not fail, got %+v", failures)
	}
	if cov.EvaluatedSamples != 2*5*2 {
		t.Fatalf("evaluated samples = %d, want %d", cov.EvaluatedSamples, 2*5*2)
	}
	if cov.ConstrainedSamples != 2*5*1 {
		t.Fatalf("constrained samples = %d, want %d", cov.ConstrainedSamples, 2*5*1)
	}
}

func TestValidateDeterministicOrdering(t *testing.T) {
	// Every sample of both variables is out of range, so the record
	// order exposes the full traversal order.
	arr := buildArray(t, "S01", "walking", []string{"a", "b"}, 2, func(c, p, v int) float64 {
		return 99
	})
	snap := specSnapshot(t, "walking", map[string][]ranges.Checkpoint{
		"a": {{PhasePercent: 0, Min: 0, Max: 1}},
		"b": {{PhasePercent: 0, Min: 0, Max: 1}},
	})

	first, _, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(first) != 2*5*2 {
		t.Fatalf("failure count = %d, want %d", len(first), 2*5*2)
	}
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if cur.CycleIndex < prev.CycleIndex {
			t.Fatalf("cycle order violated at %d: %+v after %+v", i, cur, prev)
		}
		if cur.CycleIndex == prev.CycleIndex && cur.PhasePercent < prev.PhasePercent {
			t.Fatalf("phase order violated at %d: %+v after %+v", i, cur, prev)
		}
	}

	second, _, err := Validate(arr, snap)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated validation produced different records")
	}
}

func TestValidateNilInputs(t *testing.T) {
	snap := ranges.NewStore().Snapshot()
	if _, _, err := Validate(nil, snap); err == nil {
		t.Fatal("expected error for nil array")
	}
	arr := buildArray(t, "S01", "walking", []string{"a"}, 1, func(c, p, v int) float64 { return 0 })
	if _, _, err := Validate(arr, nil); err == nil {
		t.Fatal("expected error for nil snapshot")
	}
}
