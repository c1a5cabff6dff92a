package ranges

// BoundsAt interpolates the (min, max) expectation at an arbitrary
// phase position from a checkpoint list. Positions between two
// checkpoints interpolate linearly; positions before the first or
// after the last checkpoint clamp to the nearest checkpoint's bounds,
// so phases the specification author did not cover are never
// over-constrained by extrapolation. A single checkpoint applies
// uniformly. The third return is false when the list is empty, which
// callers treat as "unconstrained".
func BoundsAt(cps []Checkpoint, phasePercent float64) (min, max float64, ok bool) {
	if len(cps) == 0 {
		return 0, 0, false
	}
	first := cps[0]
	if phasePercent <= first.PhasePercent {
		return first.Min, first.Max, true
	}
	last := cps[len(cps)-1]
	if phasePercent >= last.PhasePercent {
		return last.Min, last.Max, true
	}
	for i := 1; i < len(cps); i++ {
		hi := cps[i]
		if phasePercent > hi.PhasePercent {
			continue
		}
		lo := cps[i-1]
		frac := (phasePercent - lo.PhasePercent) / (hi.PhasePercent - lo.PhasePercent)
		min = lo.Min + frac*(hi.Min-lo.Min)
		max = lo.Max + frac*(hi.Max-lo.Max)
		return min, max, true
	}
	return last.Min, last.Max, true
}
