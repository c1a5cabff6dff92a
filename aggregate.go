package stridecheck

// Summary reduces one validation run to aggregate counts and a quality
// score. Summaries of disjoint sub-runs merge by component-wise
// summation, so parallel units can be combined in any order.
type Summary struct {
	TotalCycles  int     `json:"total_cycles"`
	ValidCycles  int     `json:"valid_cycles"`
	FailedCycles int     `json:"failed_cycles"`
	QualityScore float64 `json:"quality_score"`

	FailureCount       int            `json:"failure_count"`
	FailuresByTask     map[string]int `json:"failures_by_task,omitempty"`
	FailuresByVariable map[string]int `json:"failures_by_variable,omitempty"`

	FailedCyclesByTask     map[string]int `json:"failed_cycles_by_task,omitempty"`
	FailedCyclesByVariable map[string]int `json:"failed_cycles_by_variable,omitempty"`

	// FailedCycleShareByTask is the fraction of all cycles in the run
	// with at least one failure in the given task, and likewise per
	// variable. Shares are derived from the count maps above.
	FailedCycleShareByTask     map[string]float64 `json:"failed_cycle_share_by_task,omitempty"`
	FailedCycleShareByVariable map[string]float64 `json:"failed_cycle_share_by_variable,omitempty"`

	Coverage Coverage `json:"coverage"`

	// ExcludedRuns counts phase runs dropped for not matching the
	// points-per-cycle contract; UnprocessableUnits counts (subject,
	// task) units that errored structurally. Neither dilutes the
	// quality score: such cycles never enter TotalCycles.
	ExcludedRuns       int `json:"excluded_runs"`
	UnprocessableUnits int `json:"unprocessable_units"`
}

type cycleKey struct {
	subject string
	task    string
	cycle   int
}

// Aggregate builds a Summary from a run's cycle total and its failure
// records. It is a pure function: no I/O, no randomness. An empty run
// is vacuously valid and scores 1.0.
func Aggregate(totalCycles int, failures []FailureRecord) Summary {
	s := Summary{
		TotalCycles:        totalCycles,
		FailureCount:       len(failures),
		FailuresByTask:     make(map[string]int),
		FailuresByVariable: make(map[string]int),
	}
	failedCycles := make(map[cycleKey]struct{})
	byTaskCycle := make(map[string]map[cycleKey]struct{})
	byVarCycle := make(map[string]map[cycleKey]struct{})
	for _, f := range failures {
		key := cycleKey{subject: f.Subject, task: f.Task, cycle: f.CycleIndex}
		failedCycles[key] = struct{}{}
		s.FailuresByTask[f.Task]++
		s.FailuresByVariable[f.Variable]++
		if byTaskCycle[f.Task] == nil {
			byTaskCycle[f.Task] = make(map[cycleKey]struct{})
		}
		byTaskCycle[f.Task][key] = struct{}{}
		if byVarCycle[f.Variable] == nil {
			byVarCycle[f.Variable] = make(map[cycleKey]struct{})
		}
		byVarCycle[f.Variable][key] = struct{}{}
	}
	s.FailedCycles = len(failedCycles)
	s.ValidCycles = totalCycles - s.FailedCycles
	s.FailedCyclesByTask = make(map[string]int, len(byTaskCycle))
	for task, set := range byTaskCycle {
		s.FailedCyclesByTask[task] = len(set)
	}
	s.FailedCyclesByVariable = make(map[string]int, len(byVarCycle))
	for name, set := range byVarCycle {
		s.FailedCyclesByVariable[name] = len(set)
	}
	s.finish()
	return s
}

// Merge combines two disjoint sub-run summaries component-wise.
// Merging is commutative and associative, so the caller may fold
// parallel unit results in any order.
func (s Summary) Merge(other Summary) Summary {
	out := Summary{
		TotalCycles:            s.TotalCycles + other.TotalCycles,
		ValidCycles:            s.ValidCycles + other.ValidCycles,
		FailedCycles:           s.FailedCycles + other.FailedCycles,
		FailureCount:           s.FailureCount + other.FailureCount,
		FailuresByTask:         sumCounts(s.FailuresByTask, other.FailuresByTask),
		FailuresByVariable:     sumCounts(s.FailuresByVariable, other.FailuresByVariable),
		FailedCyclesByTask:     sumCounts(s.FailedCyclesByTask, other.FailedCyclesByTask),
		FailedCyclesByVariable: sumCounts(s.FailedCyclesByVariable, other.FailedCyclesByVariable),
		Coverage:               s.Coverage.Add(other.Coverage),
		ExcludedRuns:           s.ExcludedRuns + other.ExcludedRuns,
		UnprocessableUnits:     s.UnprocessableUnits + other.UnprocessableUnits,
	}
	out.finish()
	return out
}

// finish recomputes the derived score and share maps from the counts.
func (s *Summary) finish() {
	if s.TotalCycles == 0 {
		s.QualityScore = 1.0
	} else {
		s.QualityScore = float64(s.ValidCycles) / float64(s.TotalCycles)
	}
	s.FailedCycleShareByTask = shares(s.FailedCyclesByTask, s.TotalCycles)
	s.FailedCycleShareByVariable = shares(s.FailedCyclesByVariable, s.TotalCycles)
}

func sumCounts(a, b map[string]int) map[string]int {
	out := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

func shares(counts map[string]int, total int) map[string]float64 {
	if len(counts) == 0 || total == 0 {
		return nil
	}
	out := make(map[string]float64, len(counts))
	for k, v := range counts {
		out[k] = float64(v) / float64(total)
	}
	return out
}
