// Package cycles reshapes flat phase-indexed locomotion tables into
// per-cycle arrays. A table holds one row per phase sample with the
// subject, task, within-cycle phase marker, and one numeric column per
// signal variable. Extraction groups rows by (subject, task), splits
// them into runs at phase resets, and keeps only runs with exactly the
// configured number of points per cycle.
package cycles

import (
	"fmt"
	"math"
)

// Pair identifies one (subject, task) unit of work.
type Pair struct {
	Subject string `json:"subject"`
	Task    string `json:"task"`
}

// Table is a flat long-format dataset indexed by (subject, task).
// Rows are kept in load order; the order of first appearance defines
// the order of Pairs.
type Table struct {
	pointsPerCycle int
	variables      []string
	varIndex       map[string]int

	subjects []string
	tasks    []string
	phases   []float64
	values   [][]float64 // one slice per row, aligned with variables

	pairs    []Pair
	pairRows map[Pair][]int
}

// NewTable creates an empty table for signals sampled at pointsPerCycle
// phase points per gait cycle. Variable order is preserved as given and
// carried through every extracted array.
func NewTable(pointsPerCycle int, variables []string) (*Table, error) {
	if pointsPerCycle < 2 {
		return nil, fmt.Errorf("cycles: points per cycle must be at least 2, got %d", pointsPerCycle)
	}
	if len(variables) == 0 {
		return nil, fmt.Errorf("cycles: at least one signal variable is required")
	}
	idx := make(map[string]int, len(variables))
	for i, name := range variables {
		if name == "" {
			return nil, fmt.Errorf("cycles: variable %d has an empty name", i)
		}
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("cycles: duplicate variable %q", name)
		}
		idx[name] = i
	}
	return &Table{
		pointsPerCycle: pointsPerCycle,
		variables:      append([]string(nil), variables...),
		varIndex:       idx,
		pairRows:       make(map[Pair][]int),
	}, nil
}

// Append adds one sample row. values must align with the table's
// variable order; non-numeric source cells are represented as NaN and
// surface later as structural errors during extraction.
func (t *Table) Append(subject, task string, phase float64, values []float64) error {
	if subject == "" || task == "" {
		return fmt.Errorf("cycles: row %d missing subject or task", len(t.subjects))
	}
	if len(values) != len(t.variables) {
		return fmt.Errorf("cycles: row %d has %d values, want %d", len(t.subjects), len(values), len(t.variables))
	}
	row := len(t.subjects)
	t.subjects = append(t.subjects, subject)
	t.tasks = append(t.tasks, task)
	t.phases = append(t.phases, phase)
	t.values = append(t.values, append([]float64(nil), values...))

	pair := Pair{Subject: subject, Task: task}
	if _, seen := t.pairRows[pair]; !seen {
		t.pairs = append(t.pairs, pair)
	}
	t.pairRows[pair] = append(t.pairRows[pair], row)
	return nil
}

// PointsPerCycle returns the configured samples-per-cycle count P.
func (t *Table) PointsPerCycle() int { return t.pointsPerCycle }

// Variables returns the signal column names in table order.
func (t *Table) Variables() []string {
	return append([]string(nil), t.variables...)
}

// RowCount returns the number of sample rows loaded.
func (t *Table) RowCount() int { return len(t.subjects) }

// Row returns the identity and phase marker of row i.
func (t *Table) Row(i int) (subject, task string, phase float64) {
	return t.subjects[i], t.tasks[i], t.phases[i]
}

// Value returns the sample for one variable at row i. The second
// return is false for variables the table does not carry.
func (t *Table) Value(i int, variable string) (float64, bool) {
	v, ok := t.varIndex[variable]
	if !ok {
		return math.NaN(), false
	}
	return t.values[i][v], true
}

// Pairs lists every (subject, task) combination in order of first
// appearance.
func (t *Table) Pairs() []Pair {
	return append([]Pair(nil), t.pairs...)
}
