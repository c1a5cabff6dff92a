// Package pipeline orchestrates validation runs: load a dataset,
// snapshot the range specification, validate every (subject, task)
// unit, and aggregate the results into artifacts. It is the only
// package here that logs or writes files; the engine packages stay
// pure.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stridecheck"
	"stridecheck/cycles"
	"stridecheck/dataset"
	"stridecheck/ranges"
)

const (
	defaultPointsPerCycle = 150
	defaultWorkers        = 4
)

// Run executes one validation run and returns the merged result.
// Units validate independently (bounded by Workers); merge order never
// affects the summary because aggregation is commutative.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.DatasetPath) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if opts.Spec == nil && strings.TrimSpace(opts.SpecPath) == "" {
		return nil, fmt.Errorf("range specification is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := opts.Spec
	if store == nil {
		loaded, err := ranges.LoadSpec(opts.SpecPath)
		if err != nil {
			return nil, err
		}
		store = loaded
	}
	snap := store.Snapshot()

	table, err := loadTable(opts.DatasetPath, opts.Format, opts.PointsPerCycle)
	if err != nil {
		return nil, err
	}
	if err := checkVariables(table, opts.Variables); err != nil {
		return nil, err
	}
	logCoverageGaps(logger, table, snap, opts.Variables)

	pairs := table.Pairs()
	type outcome struct {
		unit     UnitResult
		failures []stridecheck.FailureRecord
	}
	outcomes := make([]outcome, len(pairs))

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, pair := range pairs {
		i, pair := i, pair
		eg.Go(func() error {
			unit := UnitResult{Subject: pair.Subject, Task: pair.Task}
			arr, excluded, err := table.Extract(pair.Subject, pair.Task, opts.Variables)
			if err != nil {
				unit.Error = err.Error()
				outcomes[i] = outcome{unit: unit}
				logger.Warn("unit unprocessable",
					zap.String("subject", pair.Subject),
					zap.String("task", pair.Task),
					zap.Error(err))
				return nil
			}
			failures, cov, err := stridecheck.Validate(arr, snap)
			if err != nil {
				unit.Error = err.Error()
				outcomes[i] = outcome{unit: unit}
				logger.Warn("unit unprocessable",
					zap.String("subject", pair.Subject),
					zap.String("task", pair.Task),
					zap.Error(err))
				return nil
			}
			unit.Cycles = arr.Cycles()
			unit.ExcludedRuns = excluded
			unit.FailureCount = len(failures)
			unit.Coverage = cov
			outcomes[i] = outcome{unit: unit, failures: failures}
			logger.Info("unit validated",
				zap.String("subject", pair.Subject),
				zap.String("task", pair.Task),
				zap.Int("cycles", arr.Cycles()),
				zap.Int("excluded_runs", excluded),
				zap.Int("failures", len(failures)))
			return nil
		})
	}
	_ = eg.Wait()

	result := &Result{SpecGeneration: snap.Generation}
	totalCycles := 0
	excludedRuns := 0
	unprocessable := 0
	var coverage stridecheck.Coverage
	for _, o := range outcomes {
		result.Units = append(result.Units, o.unit)
		if o.unit.Error != "" {
			unprocessable++
			continue
		}
		totalCycles += o.unit.Cycles
		excludedRuns += o.unit.ExcludedRuns
		coverage = coverage.Add(o.unit.Coverage)
		result.Failures = append(result.Failures, o.failures...)
	}
	summary := stridecheck.Aggregate(totalCycles, result.Failures)
	summary.Coverage = coverage
	summary.ExcludedRuns = excludedRuns
	summary.UnprocessableUnits = unprocessable
	result.Summary = summary

	logger.Info("run complete",
		zap.Int64("spec_generation", snap.Generation),
		zap.Int("units", len(pairs)),
		zap.Int("unprocessable_units", unprocessable),
		zap.Int("total_cycles", summary.TotalCycles),
		zap.Int("failed_cycles", summary.FailedCycles),
		zap.Float64("quality_score", summary.QualityScore))

	if opts.OutDir != "" {
		if err := writeArtifacts(opts.OutDir, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func loadTable(path, format string, pointsPerCycle int) (*cycles.Table, error) {
	if pointsPerCycle <= 0 {
		pointsPerCycle = defaultPointsPerCycle
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	switch format {
	case "parquet":
		return dataset.ReadParquet(path, pointsPerCycle)
	case "csv":
		return dataset.ReadCSV(path, pointsPerCycle)
	default:
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
}

func checkVariables(table *cycles.Table, variables []string) error {
	if variables == nil {
		return nil
	}
	known := make(map[string]struct{})
	for _, name := range table.Variables() {
		known[name] = struct{}{}
	}
	for _, name := range variables {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("variable %q not present in dataset", name)
		}
	}
	return nil
}

// logCoverageGaps reports naming-convention drift and unconstrained
// (task, variable) pairs up front, so a clean summary with thin
// coverage is explainable from the log.
func logCoverageGaps(logger *zap.Logger, table *cycles.Table, snap *ranges.Snapshot, variables []string) {
	selected := variables
	if selected == nil {
		selected = table.Variables()
	}
	for _, name := range selected {
		if dataset.Classify(name) == dataset.KindUnknown {
			logger.Warn("variable name drifts from naming convention", zap.String("variable", name))
		}
	}
	seen := make(map[string]struct{})
	for _, pair := range table.Pairs() {
		if _, done := seen[pair.Task]; done {
			continue
		}
		seen[pair.Task] = struct{}{}
		var unconstrained []string
		for _, name := range selected {
			if _, ok := snap.Get(pair.Task, name); !ok {
				unconstrained = append(unconstrained, name)
			}
		}
		if len(unconstrained) > 0 {
			logger.Info("unconstrained variables",
				zap.String("task", pair.Task),
				zap.Strings("variables", unconstrained))
		}
	}
}

func writeArtifacts(outDir string, result *Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	result.SummaryPath = filepath.Join(outDir, "validation_summary.json")
	if err := writeJSON(result.SummaryPath, result.Summary); err != nil {
		return fmt.Errorf("write validation_summary.json: %w", err)
	}
	result.FailuresPath = filepath.Join(outDir, "failure_records.json")
	failures := result.Failures
	if failures == nil {
		failures = []stridecheck.FailureRecord{}
	}
	if err := writeJSON(result.FailuresPath, failures); err != nil {
		return fmt.Errorf("write failure_records.json: %w", err)
	}
	result.UnitsPath = filepath.Join(outDir, "unit_reports.json")
	if err := writeJSON(result.UnitsPath, result.Units); err != nil {
		return fmt.Errorf("write unit_reports.json: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
