package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stridecheck/cycles"
	"stridecheck/ranges"
)

// TuneOptions configures range derivation from a reference dataset.
type TuneOptions struct {
	DatasetPath    string
	Format         string // parquet|csv, default parquet
	Task           string
	PointsPerCycle int
	Variables      []string

	PercentileLow  float64
	PercentileHigh float64

	// CandidatePath, when set, receives the tuned checkpoints as a
	// YAML specification document for review. Nothing is applied to
	// an active store here; acceptance is an explicit Replace by the
	// caller.
	CandidatePath string

	Logger *zap.Logger
}

// TuneResult reports the derived candidate checkpoints.
type TuneResult struct {
	Task            string                         `json:"task"`
	ReferenceCycles int                            `json:"reference_cycles"`
	Checkpoints     map[string][]ranges.Checkpoint `json:"checkpoints"`
	CandidatePath   string                         `json:"candidate_path,omitempty"`
}

// TuneReference pools every subject's cycles for one task from a
// reference dataset and derives percentile-based candidate
// checkpoints. Units that error structurally are skipped and logged;
// tuning proceeds on the remaining reference cycles.
func TuneReference(opts TuneOptions) (*TuneResult, error) {
	if strings.TrimSpace(opts.DatasetPath) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if strings.TrimSpace(opts.Task) == "" {
		return nil, fmt.Errorf("task is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := loadTable(opts.DatasetPath, opts.Format, opts.PointsPerCycle)
	if err != nil {
		return nil, err
	}
	if err := checkVariables(table, opts.Variables); err != nil {
		return nil, err
	}

	var arrays []*cycles.Array
	for _, pair := range table.Pairs() {
		if pair.Task != opts.Task {
			continue
		}
		arr, excluded, err := table.Extract(pair.Subject, pair.Task, opts.Variables)
		if err != nil {
			logger.Warn("reference unit skipped",
				zap.String("subject", pair.Subject),
				zap.String("task", pair.Task),
				zap.Error(err))
			continue
		}
		if excluded > 0 {
			logger.Warn("reference unit dropped incomplete runs",
				zap.String("subject", pair.Subject),
				zap.String("task", pair.Task),
				zap.Int("excluded_runs", excluded))
		}
		if arr.Cycles() > 0 {
			arrays = append(arrays, arr)
		}
	}
	if len(arrays) == 0 {
		return nil, fmt.Errorf("no reference cycles for task %q", opts.Task)
	}
	ref, err := cycles.Stack(arrays...)
	if err != nil {
		return nil, err
	}

	tuned, err := ranges.Tune(ref, opts.PercentileLow, opts.PercentileHigh)
	if err != nil {
		return nil, err
	}
	logger.Info("reference ranges tuned",
		zap.String("task", opts.Task),
		zap.Int("reference_cycles", ref.Cycles()),
		zap.Int("variables", len(tuned)),
		zap.Float64("percentile_low", opts.PercentileLow),
		zap.Float64("percentile_high", opts.PercentileHigh))

	result := &TuneResult{
		Task:            opts.Task,
		ReferenceCycles: ref.Cycles(),
		Checkpoints:     tuned,
	}
	if opts.CandidatePath != "" {
		candidate := ranges.NewStore()
		for variable, cps := range tuned {
			if err := candidate.Replace(opts.Task, variable, cps); err != nil {
				return nil, err
			}
		}
		if err := ranges.WriteSpec(opts.CandidatePath, candidate.Snapshot()); err != nil {
			return nil, err
		}
		result.CandidatePath = opts.CandidatePath
	}
	return result, nil
}
