package ranges

import (
	"fmt"
	"math"
	"sort"

	"stridecheck/cycles"
)

// TuneStepPercent is the phase grid spacing for tuned checkpoints: one
// checkpoint every 5% of the gait cycle.
const TuneStepPercent = 5.0

// Tune derives candidate checkpoints from a reference cycle array
// using percentile statistics. For each variable it samples the phase
// grid, collects the values across all reference cycles at that phase
// point, and emits [percentileLow, percentileHigh] as the bounds.
// Percentile bounds stay robust against skewed distributions and
// outlier strides, unlike mean-plus-k-sigma envelopes.
//
// The result is a candidate only: nothing is applied until the caller
// hands it to Store.Replace, keeping suggested and active ranges
// separated.
func Tune(ref *cycles.Array, percentileLow, percentileHigh float64) (map[string][]Checkpoint, error) {
	if percentileLow <= 0 || percentileHigh >= 100 || percentileLow >= percentileHigh {
		return nil, fmt.Errorf("%w: percentiles must satisfy 0 < low < high < 100, got low=%.3f high=%.3f",
			ErrInvalidParameter, percentileLow, percentileHigh)
	}
	if ref == nil || ref.Cycles() == 0 {
		return nil, fmt.Errorf("%w: reference array has no cycles", ErrInvalidParameter)
	}

	points := ref.Points()
	out := make(map[string][]Checkpoint, len(ref.Variables))
	buf := make([]float64, ref.Cycles())
	for v, name := range ref.Variables {
		var cps []Checkpoint
		for pct := 0.0; pct <= 100.0; pct += TuneStepPercent {
			p := int(math.Round(pct / 100 * float64(points-1)))
			samples := ref.AcrossCycles(p, v)
			copy(buf, samples)
			sort.Float64s(buf)
			cps = append(cps, Checkpoint{
				PhasePercent: pct,
				Min:          percentile(buf, percentileLow),
				Max:          percentile(buf, percentileHigh),
			})
		}
		out[name] = cps
	}
	return out, nil
}

// percentile computes the q-th percentile of sorted values using
// linear interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
