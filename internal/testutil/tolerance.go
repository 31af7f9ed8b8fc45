package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps || math.IsNaN(diff) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireBounded fails t if any element is NaN, infinite or larger in
// magnitude than limit.
func RequireBounded(t testing.TB, data []float64, limit float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
			t.Fatalf("index %d: value %v outside +/-%v", i, v, limit)
		}
	}
}

// MaxAbsDiff returns the largest element-wise difference over the common
// length of a and b.
func MaxAbsDiff(a, b []float64) float64 {
	n := min(len(a), len(b))
	var d float64
	for i := range n {
		d = max(d, math.Abs(a[i]-b[i]))
	}
	return d
}
