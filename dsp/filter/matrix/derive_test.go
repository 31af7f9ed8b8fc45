package matrix

import (
	"math"
	"testing"

	"github.com/cwbudde/matrixfilter/dsp/filter/biquad"
	"github.com/cwbudde/matrixfilter/internal/testutil"
	"github.com/cwbudde/matrixfilter/measure/response"
)

func TestDeriveCoefficients_Deterministic(t *testing.T) {
	for _, m := range Modes() {
		p := Parameters{Mode: m, CutoffHz: 3210.5, Q: 1.37, GainDB: -7.25}
		a := DeriveCoefficients(p, 48000)
		b := DeriveCoefficients(p, 48000)
		if a != b {
			t.Fatalf("%v: recomputation differs: %+v vs %+v", m, a, b)
		}
	}
}

func TestDeriveCoefficients_InvalidSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if got := DeriveCoefficients(DefaultParameters(), sr); got != biquad.Identity() {
			t.Errorf("sampleRate=%v: got %+v, want identity", sr, got)
		}
	}
}

func TestDeriveCoefficients_ClampsBelowNyquist(t *testing.T) {
	sr := 22050.0
	p := Parameters{Mode: Lowpass, CutoffHz: 20000, Q: 0.707}

	got := DeriveCoefficients(p, sr)
	want := DeriveCoefficients(Parameters{Mode: Lowpass, CutoffHz: sr / 2 * nyquistMargin, Q: 0.707}, sr)
	if got != want {
		t.Fatalf("cutoff above Nyquist not clamped: got %+v, want %+v", got, want)
	}
	if got == (biquad.Coefficients{}) || !got.IsStable() {
		t.Fatalf("clamped coefficients unusable: %+v", got)
	}
}

func TestDeriveCoefficients_SanitizesInput(t *testing.T) {
	raw := Parameters{Mode: Peaking, CutoffHz: math.NaN(), Q: 99, GainDB: -99}
	if DeriveCoefficients(raw, 48000) != DeriveCoefficients(raw.Sanitize(), 48000) {
		t.Fatal("DeriveCoefficients must sanitize its input")
	}
}

func TestDeriveCoefficients_GainOnlyAffectsGainModes(t *testing.T) {
	for _, m := range Modes() {
		flat := DeriveCoefficients(Parameters{Mode: m, CutoffHz: 2000, Q: 1, GainDB: 0}, 48000)
		boosted := DeriveCoefficients(Parameters{Mode: m, CutoffHz: 2000, Q: 1, GainDB: 12}, 48000)
		if m.UsesGain() == (flat == boosted) {
			t.Errorf("%v: gain changed coefficients = %v, want %v", m, flat != boosted, m.UsesGain())
		}
	}
}

func TestDeriveCoefficients_ReferenceGains(t *testing.T) {
	sr := 48000.0

	tests := []struct {
		p      Parameters
		freq   float64
		wantDB float64
	}{
		{Parameters{Mode: Lowpass, CutoffHz: 1000, Q: 0.707}, 0, 0},
		{Parameters{Mode: Highpass, CutoffHz: 1000, Q: 0.707}, sr / 2, 0},
		{Parameters{Mode: Bandpass, CutoffHz: 2500, Q: 3}, 2500, 0},
		{Parameters{Mode: Peaking, CutoffHz: 5000, Q: 2, GainDB: 6}, 5000, 6},
		{Parameters{Mode: LowShelf, CutoffHz: 200, Q: 0.707, GainDB: -9}, 0, -9},
		{Parameters{Mode: HighShelf, CutoffHz: 8000, Q: 0.707, GainDB: 4}, sr / 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.p.Mode.String(), func(t *testing.T) {
			c := DeriveCoefficients(tt.p, sr)
			if got := c.MagnitudeDB(tt.freq, sr); math.Abs(got-tt.wantDB) > 1e-6 {
				t.Fatalf("gain at %v Hz = %v dB, want %v dB", tt.freq, got, tt.wantDB)
			}
		})
	}

	notch := DeriveCoefficients(Parameters{Mode: Notch, CutoffHz: 1000, Q: 1}, sr)
	if got := notch.MagnitudeSquared(1000, sr); got > 1e-18 {
		t.Fatalf("notch center |H|^2 = %v, want 0", got)
	}
}

func TestDeriveCoefficients_StabilityGrid(t *testing.T) {
	qs := []float64{0.1, 0.3, 0.707, 1, 2, 5, 10}
	gains := []float64{-24, 0, 24}

	for _, sr := range []float64{44100, 48000, 96000} {
		cutoffs := testutil.LogSpace(20, sr/2*0.99, 24)
		for _, m := range Modes() {
			for _, q := range qs {
				for _, f := range cutoffs {
					for _, g := range gains {
						p := Parameters{Mode: m, CutoffHz: f, Q: q, GainDB: g}
						c := DeriveCoefficients(p, sr)
						if !c.IsStable() || c.PoleRadius() >= 1 {
							t.Fatalf("%v at %v Hz: unstable, radius %v (%+v)", p, sr, c.PoleRadius(), c)
						}
						assertBoundedImpulse(t, c)
					}
				}
			}
		}
	}
}

func TestLowpassCutoffIsMinus3dB(t *testing.T) {
	const sr = 44100.0
	p := Parameters{Mode: Lowpass, CutoffHz: 1000, Q: 0.707}

	b := NewBank(WithSampleRate(sr), WithParameters(p))
	process := func(buf []float64) {
		b.ProcessBlock([][]float64{buf}, len(buf))
	}

	r, err := response.Measure(process, sr, 16384)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.MagnitudeDB(1000); math.Abs(got+3) > 0.5 {
		t.Fatalf("DFT gain at 1 kHz = %.3f dB, want -3 +/- 0.5 dB", got)
	}

	b.Reset()
	got, err := response.SineGainDB(process, 1000, sr, 4410, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got+3) > 0.5 {
		t.Fatalf("sine gain at 1 kHz = %.3f dB, want -3 +/- 0.5 dB", got)
	}
}

func assertBoundedImpulse(t *testing.T, c biquad.Coefficients) {
	t.Helper()

	var u Unit
	ir := testutil.Impulse(2048, 0)
	u.ProcessBlock(&c, ir)
	testutil.RequireBounded(t, ir, 1e4)
}
