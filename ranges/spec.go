// Package ranges holds task-specific expected-value ranges for
// locomotion signals and derives them from reference data. Ranges are
// authored as sparse checkpoints per (task, variable); the bounds at
// any phase position come from linear interpolation between the two
// bracketing checkpoints.
package ranges

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotFound indicates no checkpoints are configured for a
	// (task, variable) pair. Validators treat this as "unconstrained",
	// not as a failure.
	ErrNotFound = errors.New("ranges: no checkpoints configured")

	// ErrInvalidParameter indicates a bad tuning parameter.
	ErrInvalidParameter = errors.New("ranges: invalid parameter")
)

// Checkpoint is one authored expectation: at PhasePercent of the gait
// cycle the signal must lie within [Min, Max].
type Checkpoint struct {
	PhasePercent float64 `yaml:"phase" json:"phase"`
	Min          float64 `yaml:"min" json:"min"`
	Max          float64 `yaml:"max" json:"max"`
}

// CheckpointError reports a malformed checkpoint list with enough
// context to locate it in the source document.
type CheckpointError struct {
	Task     string
	Variable string
	Index    int
	Reason   string
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("ranges: task=%s variable=%s checkpoint %d: %s", e.Task, e.Variable, e.Index, e.Reason)
}

// ValidateCheckpoints enforces the specification invariants: phase
// positions strictly increasing within [0, 100] and Min <= Max at
// every checkpoint.
func ValidateCheckpoints(task, variable string, cps []Checkpoint) error {
	for i, cp := range cps {
		if cp.PhasePercent < 0 || cp.PhasePercent > 100 {
			return &CheckpointError{Task: task, Variable: variable, Index: i,
				Reason: fmt.Sprintf("phase %.3f outside [0, 100]", cp.PhasePercent)}
		}
		if i > 0 && cp.PhasePercent <= cps[i-1].PhasePercent {
			return &CheckpointError{Task: task, Variable: variable, Index: i,
				Reason: fmt.Sprintf("phase %.3f not greater than previous %.3f", cp.PhasePercent, cps[i-1].PhasePercent)}
		}
		if cp.Min > cp.Max {
			return &CheckpointError{Task: task, Variable: variable, Index: i,
				Reason: fmt.Sprintf("min %.6f exceeds max %.6f", cp.Min, cp.Max)}
		}
	}
	return nil
}

// Store holds the active range specification. Reads during a
// validation run go through immutable snapshots; Replace is the single
// writer and bumps the generation, so an in-flight tuning update never
// corrupts an in-progress run.
type Store struct {
	mu    sync.RWMutex
	gen   int64
	tasks map[string]map[string][]Checkpoint
}

// NewStore returns an empty specification store at generation 0.
func NewStore() *Store {
	return &Store{tasks: make(map[string]map[string][]Checkpoint)}
}

// Get returns the checkpoints for a (task, variable) pair, or
// ErrNotFound when the task or variable has no configured
// expectations.
func (s *Store) Get(task, variable string) ([]Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vars, ok := s.tasks[task]
	if !ok {
		return nil, fmt.Errorf("%w: task %q", ErrNotFound, task)
	}
	cps, ok := vars[variable]
	if !ok {
		return nil, fmt.Errorf("%w: task %q variable %q", ErrNotFound, task, variable)
	}
	return append([]Checkpoint(nil), cps...), nil
}

// Replace installs a new checkpoint list for one (task, variable)
// pair after validating the ordering invariant. This is how tuner
// output becomes active; the swap is explicit and audited by the
// caller.
func (s *Store) Replace(task, variable string, cps []Checkpoint) error {
	if task == "" || variable == "" {
		return fmt.Errorf("%w: task and variable are required", ErrInvalidParameter)
	}
	if err := ValidateCheckpoints(task, variable, cps); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	vars, ok := s.tasks[task]
	if !ok {
		vars = make(map[string][]Checkpoint)
		s.tasks[task] = vars
	}
	vars[variable] = append([]Checkpoint(nil), cps...)
	s.gen++
	return nil
}

// Snapshot captures the current specification as an immutable value.
// Validators bind to one snapshot for a whole run.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make(map[string]map[string][]Checkpoint, len(s.tasks))
	for task, vars := range s.tasks {
		copied := make(map[string][]Checkpoint, len(vars))
		for name, cps := range vars {
			copied[name] = append([]Checkpoint(nil), cps...)
		}
		tasks[task] = copied
	}
	return &Snapshot{Generation: s.gen, tasks: tasks}
}

// Snapshot is a read-only view of a specification at one generation.
type Snapshot struct {
	Generation int64
	tasks      map[string]map[string][]Checkpoint
}

// Get returns the checkpoints for a (task, variable) pair. The second
// return is false when the pair is unconstrained.
func (sn *Snapshot) Get(task, variable string) ([]Checkpoint, bool) {
	vars, ok := sn.tasks[task]
	if !ok {
		return nil, false
	}
	cps, ok := vars[variable]
	return cps, ok
}

// Tasks lists configured task identifiers in sorted order.
func (sn *Snapshot) Tasks() []string {
	out := make([]string, 0, len(sn.tasks))
	for task := range sn.tasks {
		out = append(out, task)
	}
	sort.Strings(out)
	return out
}

// Variables lists configured variable names for one task in sorted
// order.
func (sn *Snapshot) Variables(task string) []string {
	vars := sn.tasks[task]
	out := make([]string, 0, len(vars))
	for name := range vars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
