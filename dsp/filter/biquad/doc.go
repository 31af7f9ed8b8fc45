// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// [Coefficients] hold one section's transfer function with a0 normalized
// to 1. [State] holds the Direct Form I history of one channel and runs
// samples against a coefficient set it does not own, so several channels
// can share one coefficient set while keeping independent histories.
// [Section] bundles both for single-channel use.
//
// Block processing dispatches to a kernel chosen once per process from the
// CPU features reported by algo-vecmath/cpu. Every kernel evaluates the same
// difference equation in the same order as [State.Process].
//
// Coefficient design lives in dsp/filter/design.
package biquad
