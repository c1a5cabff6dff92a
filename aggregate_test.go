package stridecheck

import (
	"reflect"
	"testing"
)

func TestAggregateEmptyRun(t *testing.T) {
	s := Aggregate(0, nil)
	if s.QualityScore != 1.0 {
		t.Fatalf("quality score = %v, want 1.0 for empty run", s.QualityScore)
	}
	if s.TotalCycles != 0 || s.FailedCycles != 0 || s.FailureCount != 0 {
		t.Fatalf("unexpected counts: %+v", s)
	}
}

func TestAggregateCounts(t *testing.T) {
	failures := []FailureRecord{
		{Subject: "S01", Task: "walking", CycleIndex: 0, Variable: "knee", PhasePercent: 25},
		{Subject: "S01", Task: "walking", CycleIndex: 0, Variable: "knee", PhasePercent: 50},
		{Subject: "S01", Task: "walking", CycleIndex: 2, Variable: "hip", PhasePercent: 0},
		{Subject: "S02", Task: "running", CycleIndex: 0, Variable: "knee", PhasePercent: 75},
	}
	s := Aggregate(10, failures)

	if s.FailureCount != 4 {
		t.Fatalf("failure count = %d, want 4", s.FailureCount)
	}
	// Cycle (S01, walking, 0) fails twice but counts once.
	if s.FailedCycles != 3 || s.ValidCycles != 7 {
		t.Fatalf("failed/valid = %d/%d, want 3/7", s.FailedCycles, s.ValidCycles)
	}
	if s.QualityScore != 0.7 {
		t.Fatalf("quality score = %v, want 0.7", s.QualityScore)
	}
	if s.FailuresByTask["walking"] != 3 || s.FailuresByTask["running"] != 1 {
		t.Fatalf("failures by task = %v", s.FailuresByTask)
	}
	if s.FailuresByVariable["knee"] != 3 || s.FailuresByVariable["hip"] != 1 {
		t.Fatalf("failures by variable = %v", s.FailuresByVariable)
	}
	if s.FailedCyclesByTask["walking"] != 2 || s.FailedCyclesByTask["running"] != 1 {
		t.Fatalf("failed cycles by task = %v", s.FailedCyclesByTask)
	}
	if s.FailedCyclesByVariable["knee"] != 2 || s.FailedCyclesByVariable["hip"] != 1 {
		t.Fatalf("failed cycles by variable = %v", s.FailedCyclesByVariable)
	}
	if s.FailedCycleShareByTask["walking"] != 0.2 {
		t.Fatalf("failed cycle share by task = %v", s.FailedCycleShareByTask)
	}
}

func TestMergeMatchesCombinedAggregate(t *testing.T) {
	// Sub-runs cover disjoint (subject, task) units, as produced by
	// parallel validation.
	f1 := []FailureRecord{
		{Subject: "S01", Task: "walking", CycleIndex: 0, Variable: "knee"},
		{Subject: "S01", Task: "walking", CycleIndex: 1, Variable: "hip"},
	}
	f2 := []FailureRecord{
		{Subject: "S02", Task: "running", CycleIndex: 0, Variable: "knee"},
	}
	merged := Aggregate(6, f1).Merge(Aggregate(4, f2))
	combined := Aggregate(10, append(append([]FailureRecord(nil), f1...), f2...))
	if !reflect.DeepEqual(merged, combined) {
		t.Fatalf("merge mismatch:\n merged   %+v\n combined %+v", merged, combined)
	}

	// Commutativity.
	flipped := Aggregate(4, f2).Merge(Aggregate(6, f1))
	if !reflect.DeepEqual(flipped, combined) {
		t.Fatalf("merge is order-sensitive:\n flipped  %+v\n combined %+v", flipped, combined)
	}
}

func TestMergeEmptySummaryIsIdentity(t *testing.T) {
	f := []FailureRecord{{Subject: "S01", Task: "walking", CycleIndex: 0, Variable: "knee"}}
	s := Aggregate(3, f)
	if got := s.Merge(Aggregate(0, nil)); !reflect.DeepEqual(got, s) {
		t.Fatalf("merging an empty summary changed the result:\n got  %+v\n want %+v", got, s)
	}
}
