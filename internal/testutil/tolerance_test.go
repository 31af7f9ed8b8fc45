package testutil

import (
	"math"
	"testing"
)

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-10, 2}, 1e-9)
	RequireBounded(t, []float64{-1, 0.5, 1}, 1)
}

func TestMaxAbsDiff(t *testing.T) {
	if d := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2}); d != 1 {
		t.Fatalf("MaxAbsDiff = %v, want 1", d)
	}
	if d := MaxAbsDiff([]float64{1, math.Inf(1)}, []float64{1}); d != 0 {
		t.Fatalf("MaxAbsDiff over common length = %v, want 0", d)
	}
}
