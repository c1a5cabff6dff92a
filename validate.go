// Package stridecheck validates phase-normalized gait cycles against
// task-specific range expectations. It consumes cycle arrays from
// stridecheck/cycles and a specification snapshot from
// stridecheck/ranges, and produces ordered failure records plus a
// quality summary. The engine performs no I/O; loading tables and
// specification files belongs to stridecheck/dataset and the caller.
package stridecheck

import (
	"fmt"

	"stridecheck/cycles"
	"stridecheck/ranges"
)

// FailureRecord describes one sample outside its interpolated bounds.
// Out-of-range samples are the expected, reportable case; they are
// collected, never raised.
type FailureRecord struct {
	Subject      string  `json:"subject"`
	Task         string  `json:"task"`
	CycleIndex   int     `json:"cycle_index"`
	Variable     string  `json:"variable"`
	PhasePercent float64 `json:"phase_percent"`
	Observed     float64 `json:"observed"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// Coverage counts how much of an array the specification actually
// constrained. Unconfigured variables still count as evaluated, so
// missing expectations show up as reduced coverage rather than as
// silently perfect quality.
type Coverage struct {
	EvaluatedSamples   int `json:"evaluated_samples"`
	ConstrainedSamples int `json:"constrained_samples"`
}

// Add returns the component-wise sum of two coverage counts.
func (c Coverage) Add(other Coverage) Coverage {
	return Coverage{
		EvaluatedSamples:   c.EvaluatedSamples + other.EvaluatedSamples,
		ConstrainedSamples: c.ConstrainedSamples + other.ConstrainedSamples,
	}
}

// Validate checks every (cycle, phase point, variable) sample of one
// array against the interpolated bounds for the array's task.
// Comparisons are inclusive and use the variable's native unit; units
// must already match the specification.
//
// The returned records are deterministic: cycle index ascending, then
// phase point ascending, then variable order as carried by the array.
// Validate errors only on structural mismatches; a (task, variable)
// pair without checkpoints is skipped as unconstrained.
func Validate(arr *cycles.Array, spec *ranges.Snapshot) ([]FailureRecord, Coverage, error) {
	if arr == nil {
		return nil, Coverage{}, fmt.Errorf("stridecheck: nil cycle array")
	}
	if spec == nil {
		return nil, Coverage{}, fmt.Errorf("stridecheck: nil specification snapshot")
	}
	nVars := len(arr.Variables)
	if got, want := arr.SampleCount(), arr.Cycles()*arr.Points()*nVars; got != want {
		return nil, Coverage{}, fmt.Errorf("stridecheck: array shape mismatch for subject=%s task=%s: %d samples, want %d",
			arr.Subject, arr.Task, got, want)
	}

	// Bounds depend only on (variable, phase point); resolve them once
	// instead of per cycle.
	type bound struct {
		min, max float64
		ok       bool
	}
	bounds := make([][]bound, nVars)
	constrained := 0
	for v, name := range arr.Variables {
		cps, ok := spec.Get(arr.Task, name)
		if !ok {
			continue
		}
		constrained++
		perPhase := make([]bound, arr.Points())
		for p := 0; p < arr.Points(); p++ {
			min, max, ok := ranges.BoundsAt(cps, arr.PhasePercent(p))
			perPhase[p] = bound{min: min, max: max, ok: ok}
		}
		bounds[v] = perPhase
	}

	var failures []FailureRecord
	for c := 0; c < arr.Cycles(); c++ {
		for p := 0; p < arr.Points(); p++ {
			for v, name := range arr.Variables {
				if bounds[v] == nil || !bounds[v][p].ok {
					continue
				}
				observed := arr.At(c, p, v)
				b := bounds[v][p]
				if observed < b.min || observed > b.max {
					failures = append(failures, FailureRecord{
						Subject:      arr.Subject,
						Task:         arr.Task,
						CycleIndex:   c,
						Variable:     name,
						PhasePercent: arr.PhasePercent(p),
						Observed:     observed,
						Min:          b.min,
						Max:          b.max,
					})
				}
			}
		}
	}
	cov := Coverage{
		EvaluatedSamples:   arr.Cycles() * arr.Points() * nVars,
		ConstrainedSamples: arr.Cycles() * arr.Points() * constrained,
	}
	return failures, cov, nil
}
