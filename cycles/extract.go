package cycles

import (
	"fmt"
	"math"
)

// NonNumericError reports a NaN sample in a signal column. The whole
// (subject, task) unit is unprocessable; numeric garbage never enters
// an extracted array.
type NonNumericError struct {
	Subject  string
	Task     string
	Variable string
	RowIndex int
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("cycles: non-numeric sample for subject=%s task=%s variable=%s row=%d",
		e.Subject, e.Task, e.Variable, e.RowIndex)
}

// Array is a 3D extraction result: cycle x phase point x variable. The
// backing data is immutable once built and always paired with its
// variable-name order.
type Array struct {
	Subject   string
	Task      string
	Variables []string

	cycles int
	points int
	data   []float64
}

// Cycles returns the number of extracted cycles.
func (a *Array) Cycles() int { return a.cycles }

// Points returns the phase samples per cycle P.
func (a *Array) Points() int { return a.points }

// SampleCount returns the number of stored samples, which must equal
// Cycles * Points * len(Variables) for a structurally sound array.
func (a *Array) SampleCount() int { return len(a.data) }

// At returns the sample for cycle c, phase point p, variable v.
func (a *Array) At(c, p, v int) float64 {
	return a.data[(c*a.points+p)*len(a.Variables)+v]
}

// PhasePercent maps phase point p to percent of cycle completion.
// Point 0 is cycle start (heel strike), point P-1 is cycle end.
func (a *Array) PhasePercent(p int) float64 {
	return 100 * float64(p) / float64(a.points-1)
}

// AcrossCycles gathers the sample at phase point p of variable v from
// every cycle, in cycle order.
func (a *Array) AcrossCycles(p, v int) []float64 {
	out := make([]float64, a.cycles)
	for c := 0; c < a.cycles; c++ {
		out[c] = a.At(c, p, v)
	}
	return out
}

// Stack concatenates arrays with identical task, variable order, and
// points per cycle into one array, cycle-major in argument order. It
// is used to pool reference cycles from several subjects for tuning.
func Stack(arrays ...*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("cycles: nothing to stack")
	}
	first := arrays[0]
	total := 0
	for _, arr := range arrays {
		if arr.Task != first.Task {
			return nil, fmt.Errorf("cycles: cannot stack task %q with %q", arr.Task, first.Task)
		}
		if arr.points != first.points {
			return nil, fmt.Errorf("cycles: cannot stack %d-point cycles with %d-point cycles", arr.points, first.points)
		}
		if len(arr.Variables) != len(first.Variables) {
			return nil, fmt.Errorf("cycles: variable count mismatch while stacking")
		}
		for i, name := range arr.Variables {
			if name != first.Variables[i] {
				return nil, fmt.Errorf("cycles: variable order mismatch while stacking (%q vs %q)", name, first.Variables[i])
			}
		}
		total += arr.cycles
	}
	out := &Array{
		Subject:   "",
		Task:      first.Task,
		Variables: append([]string(nil), first.Variables...),
		cycles:    total,
		points:    first.points,
		data:      make([]float64, 0, total*first.points*len(first.Variables)),
	}
	for _, arr := range arrays {
		out.data = append(out.data, arr.data...)
	}
	return out, nil
}

// Extract builds the 3D cycle array for one (subject, task) pair.
// Rows for the pair are split into runs at each phase-marker reset;
// only runs of exactly PointsPerCycle rows become cycles. The second
// return counts excluded runs (structural anomalies, not failures).
//
// variables selects and orders the third dimension; nil selects every
// table column in table order. An unknown (subject, task) pair yields
// an empty zero-cycle array and no error. A NaN sample inside a kept
// run aborts extraction for the pair with a *NonNumericError.
func (t *Table) Extract(subject, task string, variables []string) (*Array, int, error) {
	selected := variables
	if selected == nil {
		selected = t.variables
	}
	cols := make([]int, len(selected))
	for i, name := range selected {
		v, ok := t.varIndex[name]
		if !ok {
			return nil, 0, fmt.Errorf("cycles: unknown variable %q", name)
		}
		cols[i] = v
	}

	pair := Pair{Subject: subject, Task: task}
	rows := t.pairRows[pair]
	names := append([]string(nil), selected...)
	arr := &Array{
		Subject:   subject,
		Task:      task,
		Variables: names,
		points:    t.pointsPerCycle,
	}
	if len(rows) == 0 {
		return arr, 0, nil
	}

	runs, excluded, err := t.splitRuns(subject, task, rows)
	if err != nil {
		return nil, 0, err
	}

	arr.data = make([]float64, 0, len(runs)*t.pointsPerCycle*len(cols))
	for _, run := range runs {
		for _, row := range run {
			for _, v := range cols {
				sample := t.values[row][v]
				if math.IsNaN(sample) {
					return nil, 0, &NonNumericError{
						Subject:  subject,
						Task:     task,
						Variable: t.variables[v],
						RowIndex: row,
					}
				}
				arr.data = append(arr.data, sample)
			}
		}
	}
	arr.cycles = len(runs)
	return arr, excluded, nil
}

// splitRuns partitions the pair's rows into cycle runs. A new run
// starts wherever the phase marker fails to increase. Runs whose
// length is not exactly P are dropped and counted.
func (t *Table) splitRuns(subject, task string, rows []int) (runs [][]int, excluded int, err error) {
	var current []int
	flush := func() {
		if len(current) == 0 {
			return
		}
		if len(current) == t.pointsPerCycle {
			runs = append(runs, current)
		} else {
			excluded++
		}
		current = nil
	}
	prev := math.Inf(-1)
	for _, row := range rows {
		phase := t.phases[row]
		if math.IsNaN(phase) {
			return nil, 0, &NonNumericError{Subject: subject, Task: task, Variable: "phase", RowIndex: row}
		}
		if phase <= prev {
			flush()
		}
		current = append(current, row)
		prev = phase
	}
	flush()
	return runs, excluded, nil
}
