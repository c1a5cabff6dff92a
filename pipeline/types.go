package pipeline

import (
	"go.uber.org/zap"

	"stridecheck"
	"stridecheck/ranges"
)

// Options configures one validation run.
type Options struct {
	// DatasetPath is the flat phase-indexed table to validate.
	DatasetPath string
	// Format selects the dataset codec: parquet|csv. Defaults to
	// parquet.
	Format string

	// SpecPath points at the YAML range specification. Spec, when
	// non-nil, takes precedence and is snapshotted at run start.
	SpecPath string
	Spec     *ranges.Store

	// PointsPerCycle is the fixed samples-per-cycle count P. Defaults
	// to 150.
	PointsPerCycle int

	// Variables restricts validation to a subset of signal columns.
	// Nil validates every column in table order.
	Variables []string

	// OutDir, when set, receives JSON artifacts (validation summary,
	// failure records, unit reports).
	OutDir string

	// Workers bounds how many (subject, task) units validate
	// concurrently. Defaults to 4. Units are independent; results are
	// assembled in deterministic pair order regardless of scheduling.
	Workers int

	Logger *zap.Logger
}

// UnitResult reports one (subject, task) unit of work.
type UnitResult struct {
	Subject      string               `json:"subject"`
	Task         string               `json:"task"`
	Cycles       int                  `json:"cycles"`
	ExcludedRuns int                  `json:"excluded_runs"`
	FailureCount int                  `json:"failure_count"`
	Coverage     stridecheck.Coverage `json:"coverage"`

	// Error carries the structural error for an unprocessable unit.
	// Such units are excluded from cycle totals and counted
	// separately, so the quality score is never diluted by malformed
	// input.
	Error string `json:"error,omitempty"`
}

// Result is the full output of one validation run.
type Result struct {
	SpecGeneration int64                       `json:"spec_generation"`
	Summary        stridecheck.Summary         `json:"summary"`
	Units          []UnitResult                `json:"units"`
	Failures       []stridecheck.FailureRecord `json:"failures"`

	SummaryPath  string `json:"summary_path,omitempty"`
	FailuresPath string `json:"failures_path,omitempty"`
	UnitsPath    string `json:"units_path,omitempty"`
}
