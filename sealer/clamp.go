package sealer

import "golang.org/x/exp/constraints"

// clampBetween pins v to [lo, hi], used by the cap growth step in
// admission.go, in the same style as the repeated inline min/max
// comparisons in miner/worker.go's recalcRecommit.
func clampBetween[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
